package client

import (
	"fmt"

	"DataPos/app/models"
)

// GetCompanySettings fetches the seller identity printed on documents.
func (c *Client) GetCompanySettings() (*models.CompanySettings, error) {
	var settings models.CompanySettings
	if err := c.doJSON("GET", "/settings/company", nil, &settings); err != nil {
		return nil, fmt.Errorf("failed to fetch company settings: %w", err)
	}
	return &settings, nil
}

// GetCommentTemplates fetches the canned receipt comments.
func (c *Client) GetCommentTemplates() ([]models.CommentTemplate, error) {
	var templates []models.CommentTemplate
	if err := c.doJSON("GET", "/comment-templates", nil, &templates); err != nil {
		return nil, fmt.Errorf("failed to fetch comment templates: %w", err)
	}
	return templates, nil
}

// GetUser fetches an operator profile, including the elevation PIN hash.
func (c *Client) GetUser(username string) (*models.User, error) {
	var user models.User
	if err := c.doJSON("GET", "/users/"+username, nil, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}
