package services

import (
	"fmt"
	"strings"

	"DataPos/app/models"
)

// Column widths per paper size, in Font A characters.
const (
	thermalCols80 = 48
	thermalCols58 = 32
)

// ReceiptService composes print documents from committed sales. The
// composers are pure: same sale in, same document out.
type ReceiptService struct {
	currency   string
	paperWidth int
}

// NewReceiptService creates a composer for the configured paper.
func NewReceiptService(currency string, paperWidth int) *ReceiptService {
	if currency == "" {
		currency = "€"
	}
	if paperWidth != 58 {
		paperWidth = 80
	}
	return &ReceiptService{currency: currency, paperWidth: paperWidth}
}

// ComposeThermal builds the till receipt: customer copy, perforation
// cut, then a condensed cashier copy of the item block.
func (s *ReceiptService) ComposeThermal(sale *models.Sale, company *models.CompanySettings, comment string) *models.ReceiptDocument {
	cols := thermalCols80
	format := models.FormatThermal80
	if s.paperWidth == 58 {
		cols = thermalCols58
		format = models.FormatThermal58
	}

	doc := &models.ReceiptDocument{
		Format:        format,
		ReceiptNumber: sale.ReceiptNumber,
		Title:         "KUPON SHITJE",
		Logo:          company.LogoURL,
		QRPayload:     sale.ReceiptNumber,
		OpenDrawer:    sale.PaymentMethod == models.PaymentCash,
	}

	b := &docBuilder{cols: cols, currency: s.currency}

	// Header
	if company.Name != "" {
		b.center(company.Name, true, models.SizeDouble)
	}
	if company.Address != "" {
		b.center(company.Address, false, models.SizeNormal)
	}
	if company.Phone != "" {
		b.center("Tel: "+company.Phone, false, models.SizeNormal)
	}
	if company.NUI != "" {
		b.center("NUI: "+company.NUI, false, models.SizeNormal)
	}
	b.blank()
	b.center("KUPON SHITJE", true, models.SizeNormal)
	b.center("(Jo Fiskal)", false, models.SizeNormal)
	b.rule()

	// Sale identity
	b.pair("Kuponi:", sale.ReceiptNumber)
	b.pair("Data:", sale.CreatedAt.Format("02.01.2006 15:04"))
	if sale.CashierName != "" {
		b.pair("Arkëtar:", sale.CashierName)
	}
	b.rule()

	// Items
	s.itemBlock(b, sale)
	b.rule()

	// Totals
	b.pair("Nëntotali:", s.amount(sale.Subtotal))
	if sale.DiscountAmount > 0 {
		b.pair("Zbritja:", "-"+s.amount(sale.DiscountAmount))
	}
	b.pair("TVSH:", s.amount(sale.VatAmount))
	b.rule()
	b.pairStyled("TOTAL:", s.amount(sale.GrandTotal), true, models.SizeDouble)
	b.blank()

	// Payment
	b.pair("Pagesa:", paymentLabel(sale.PaymentMethod))
	if sale.PaymentMethod == models.PaymentCash {
		b.pair("Paguar:", s.amount(sale.AmountTendered))
		b.pair("Kusuri:", s.amount(sale.ChangeDue))
	}

	// The customer line is omitted entirely for anonymous sales.
	if sale.CustomerName != "" {
		b.blank()
		b.pair("Klient:", sale.CustomerName)
	}
	if sale.Notes != "" {
		b.left(sale.Notes)
	}

	if comment != "" {
		b.blank()
		b.center(comment, false, models.SizeNormal)
	}
	b.blank()
	b.center("Faleminderit!", true, models.SizeNormal)

	// Cashier copy below the perforation
	b.cut()
	b.center("KOPJE ARKËTARI", true, models.SizeNormal)
	b.pair("Kuponi:", sale.ReceiptNumber)
	b.rule()
	s.itemBlock(b, sale)
	b.rule()
	b.pairStyled("TOTAL:", s.amount(sale.GrandTotal), true, models.SizeNormal)

	doc.Lines = b.lines
	return doc
}

// ComposeA4 builds the invoice layout. A nil buyer prints the generic
// consumer placeholder.
func (s *ReceiptService) ComposeA4(sale *models.Sale, company *models.CompanySettings, buyer *models.Buyer) *models.ReceiptDocument {
	doc := &models.ReceiptDocument{
		Format:        models.FormatA4,
		ReceiptNumber: sale.ReceiptNumber,
		Title:         "FATURË",
	}

	b := &docBuilder{cols: 80, currency: s.currency}

	b.center("FATURË", true, models.SizeDouble)
	b.center("Nr. "+sale.ReceiptNumber, false, models.SizeNormal)
	b.center(sale.CreatedAt.Format("02.01.2006 15:04"), false, models.SizeNormal)
	b.blank()

	// Seller box
	b.leftBold("Shitësi:")
	b.left(company.Name)
	if company.Address != "" {
		b.left(company.Address)
	}
	if company.NUI != "" {
		b.left("NUI: " + company.NUI)
	}
	if company.FiscalNumber != "" {
		b.left("NF: " + company.FiscalNumber)
	}
	if company.VatNumber != "" {
		b.left("Nr. TVSH: " + company.VatNumber)
	}
	b.blank()

	// Buyer box
	b.leftBold("Blerësi:")
	if buyer == nil || buyer.Name == "" {
		b.left("Konsumator i përgjithshëm")
	} else {
		b.left(buyer.Name)
		if buyer.Address != "" {
			b.left(buyer.Address)
		}
		if buyer.TaxID != "" {
			b.left("NUI: " + buyer.TaxID)
		}
	}
	b.rule()

	// Item table
	b.leftBold(fmt.Sprintf("%-34s %6s %9s %6s %10s", "Emri", "Sasia", "Çmimi", "TVSH%", "Totali"))
	b.rule()
	for _, item := range sale.Items {
		name := item.Name
		if len([]rune(name)) > 34 {
			name = string([]rune(name)[:34])
		}
		b.left(fmt.Sprintf("%-34s %6s %9.2f %6.0f %10.2f",
			name, trimQty(item.Quantity), Round2(item.UnitPrice), item.VatPercent, Round2(item.Total)))
		if item.DiscountPercent > 0 {
			b.left(fmt.Sprintf("  zbritja %.0f%% (-%s)", item.DiscountPercent, s.amount(item.DiscountAmount)))
		}
	}
	b.rule()

	b.pair("Nëntotali:", s.amount(sale.Subtotal))
	if sale.DiscountAmount > 0 {
		b.pair("Zbritja:", "-"+s.amount(sale.DiscountAmount))
	}
	b.pair("TVSH:", s.amount(sale.VatAmount))
	b.pairStyled("TOTAL:", s.amount(sale.GrandTotal), true, models.SizeNormal)
	b.blank()
	b.pair("Mënyra e pagesës:", paymentLabel(sale.PaymentMethod))
	b.blank()
	b.pair("Shitësi:", sale.CashierName)

	doc.Lines = b.lines
	return doc
}

// itemBlock renders the shared item listing of the thermal layouts.
func (s *ReceiptService) itemBlock(b *docBuilder, sale *models.Sale) {
	for _, item := range sale.Items {
		b.left(item.Name)
		qty := fmt.Sprintf("%s x %s", trimQty(item.Quantity), s.amount(item.UnitPrice))
		b.pair(" "+qty, s.amount(item.Total))
		if item.DiscountPercent > 0 {
			b.pair(fmt.Sprintf(" zbritja %.0f%%", item.DiscountPercent), "-"+s.amount(item.DiscountAmount))
		}
	}
}

func (s *ReceiptService) amount(v float64) string {
	return fmt.Sprintf("%.2f %s", Round2(v), s.currency)
}

func paymentLabel(method string) string {
	switch method {
	case models.PaymentCash:
		return "Kesh"
	case models.PaymentBank:
		return "Bankë"
	default:
		return method
	}
}

// trimQty prints whole quantities without a decimal tail.
func trimQty(qty float64) string {
	if qty == float64(int64(qty)) {
		return fmt.Sprintf("%d", int64(qty))
	}
	return fmt.Sprintf("%.3f", qty)
}

// docBuilder accumulates styled receipt lines.
type docBuilder struct {
	cols     int
	currency string
	lines    []models.ReceiptLine
}

func (b *docBuilder) left(text string) {
	b.lines = append(b.lines, models.ReceiptLine{Text: text, Align: models.AlignLeft, Size: models.SizeNormal})
}

func (b *docBuilder) leftBold(text string) {
	b.lines = append(b.lines, models.ReceiptLine{Text: text, Align: models.AlignLeft, Bold: true, Size: models.SizeNormal})
}

func (b *docBuilder) center(text string, bold bool, size string) {
	b.lines = append(b.lines, models.ReceiptLine{Text: text, Align: models.AlignCenter, Bold: bold, Size: size})
}

// pair renders a label left and a value flush right on one line.
func (b *docBuilder) pair(label, value string) {
	b.pairStyled(label, value, false, models.SizeNormal)
}

func (b *docBuilder) pairStyled(label, value string, bold bool, size string) {
	cols := b.cols
	if size == models.SizeDouble {
		cols = cols / 2
	}
	pad := cols - len([]rune(label)) - len([]rune(value))
	if pad < 1 {
		pad = 1
	}
	b.lines = append(b.lines, models.ReceiptLine{
		Text:  label + strings.Repeat(" ", pad) + value,
		Align: models.AlignLeft,
		Bold:  bold,
		Size:  size,
	})
}

func (b *docBuilder) rule() {
	b.lines = append(b.lines, models.ReceiptLine{Rule: true})
}

func (b *docBuilder) blank() {
	b.lines = append(b.lines, models.ReceiptLine{Text: "", Align: models.AlignLeft, Size: models.SizeNormal})
}

func (b *docBuilder) cut() {
	b.lines = append(b.lines, models.ReceiptLine{Cut: true})
}
