package client

import (
	"fmt"

	"DataPos/app/models"
)

// OpenDrawer starts a cashier session with the counted opening float.
func (c *Client) OpenDrawer(openingBalance float64, openedBy string) (*models.DrawerSession, error) {
	req := map[string]interface{}{
		"opening_balance": openingBalance,
		"opened_by":       openedBy,
	}

	var session models.DrawerSession
	if err := c.doJSON("POST", "/cashier/open", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CloseDrawer closes the session with the counted actual balance and
// returns the reconciliation.
func (c *Client) CloseDrawer(sessionID uint, actualBalance float64) (*models.DrawerCloseResult, error) {
	req := map[string]interface{}{
		"session_id":     sessionID,
		"actual_balance": actualBalance,
	}

	var result models.DrawerCloseResult
	if err := c.doJSON("POST", "/cashier/close", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentDrawer returns the open session for this terminal, or nil when
// no drawer is open.
func (c *Client) CurrentDrawer() (*models.DrawerSession, error) {
	var session models.DrawerSession
	err := c.doJSON("GET", "/cashier/current", nil, &session)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.Status == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch current drawer: %w", err)
	}
	return &session, nil
}

// AddDrawerTransaction records a manual cash movement on the open session.
func (c *Client) AddDrawerTransaction(sessionID uint, kind string, amount float64, reason string) (*models.DrawerTransaction, error) {
	req := map[string]interface{}{
		"session_id": sessionID,
		"kind":       kind,
		"amount":     amount,
		"reason":     reason,
	}

	var tx models.DrawerTransaction
	if err := c.doJSON("POST", "/cashier/transaction", req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
