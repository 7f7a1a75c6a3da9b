// Package export produces the legacy manufacturing document for a quote.
//
// The downstream system is schema-sensitive: field order and tag names are
// the contract, so the document is built line by line rather than through a
// generic XML serializer. The prolog declares ISO-8859-1 and the output is
// encoded accordingly.
package export

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/mkessler/panelwerk/internal/domain"
)

// ErrEmptyQuote is returned when a quote without line items is exported;
// the resulting document would be meaningless.
var ErrEmptyQuote = &domain.Error{Code: domain.EINVALID, Message: "Cannot export a quote with no line items"}

// Price split defaults. The 40/60 split of the gross unit price into a
// material and a finish component is a heuristic inherited from the
// manufacturing system's import format; its business justification is
// undocumented, so it is overridable rather than hardcoded.
const (
	DefaultMaterialShare = 0.40
	DefaultFinishShare   = 0.60
)

// DefaultVariantCode is used when no variant suffix can be extracted from
// a product identifier.
const DefaultVariantCode = "00"

// Fixed parameter blocks of the line descriptor. The manufacturing system
// requires them even though this configurator never varies them.
const (
	processingParams = "P;0;0;0;0"
	holeParams       = "B;0;0;0"
)

// Options configures the static fields of the export document.
type Options struct {
	// User is the operator name written into the header.
	User string

	// MainModel is the manufacturing model code for the order.
	MainModel string

	// MaterialCode, FinishCode, and ColorCode are the header material
	// fields; ColorName is the human-readable color written into each
	// line descriptor.
	MaterialCode string
	FinishCode   string
	ColorCode    string
	ColorName    string

	// EdgeCode is the edge-processing code in the line descriptor.
	EdgeCode string

	// SecondaryFinishCodes is the trailing finish code pair of the line
	// descriptor.
	SecondaryFinishCodes [2]string

	// MaterialShare and FinishShare control the gross price split.
	// Zero values fall back to the 40/60 defaults.
	MaterialShare float64
	FinishShare   float64
}

// Exporter serializes quotes into the legacy document format.
type Exporter struct {
	opts    Options
	encoder *encoding.Encoder
}

// CustomerInfo carries the per-order customer fields, repeated in the
// header and in every line block.
type CustomerInfo struct {
	Name      string
	Number    string
	Reference string
}

// NewExporter creates an exporter with the given static options.
func NewExporter(opts Options) *Exporter {
	if opts.MaterialShare <= 0 {
		opts.MaterialShare = DefaultMaterialShare
	}
	if opts.FinishShare <= 0 {
		opts.FinishShare = DefaultFinishShare
	}
	return &Exporter{
		opts: opts,
		// Unmappable runes are substituted rather than failing the
		// export; the legacy system cannot consume them either way.
		encoder: encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()),
	}
}

// Export renders the document for a quote and returns it encoded as
// ISO-8859-1. The date is written as DD/MM/YYYY. Exporting an empty quote
// is a hard failure.
func (e *Exporter) Export(q domain.Quote, customer CustomerInfo, filename string, date time.Time) ([]byte, error) {
	if len(q.LineItems) == 0 {
		return nil, ErrEmptyQuote
	}

	var b strings.Builder
	w := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	w(`<?xml version="1.0" encoding="ISO-8859-1"?>`)
	w(`<ORDER>`)

	w(`  <HEADER>`)
	w(`    <FILENAME>%s</FILENAME>`, escape(filename))
	w(`    <USER>%s</USER>`, escape(e.opts.User))
	w(`    <DATE>%s</DATE>`, date.Format("02/01/2006"))
	w(`    <CUSTOMER_NAME>%s</CUSTOMER_NAME>`, escape(customer.Name))
	w(`    <CUSTOMER_NO>%s</CUSTOMER_NO>`, escape(customer.Number))
	w(`    <CUSTOMER_REF>%s</CUSTOMER_REF>`, escape(customer.Reference))
	w(`    <MAIN_MODEL>%s</MAIN_MODEL>`, escape(e.opts.MainModel))
	w(`    <MATERIAL>%s</MATERIAL>`, escape(e.opts.MaterialCode))
	w(`    <FINISH>%s</FINISH>`, escape(e.opts.FinishCode))
	w(`    <COLOR>%s</COLOR>`, escape(e.opts.ColorCode))
	w(`    <COLOR_NAME>%s</COLOR_NAME>`, escape(e.opts.ColorName))
	w(`    <SURCHARGE1>0</SURCHARGE1>`)
	w(`    <SURCHARGE2>0</SURCHARGE2>`)
	w(`  </HEADER>`)

	for i, li := range q.LineItems {
		materialPart := domain.Round2(li.UnitPrice * e.opts.MaterialShare)
		finishPart := domain.Round2(li.UnitPrice - materialPart)

		w(`  <ITEM>`)
		w(`    <CUSTOMER_NAME>%s</CUSTOMER_NAME>`, escape(customer.Name))
		w(`    <CUSTOMER_NO>%s</CUSTOMER_NO>`, escape(customer.Number))
		w(`    <CUSTOMER_REF>%s</CUSTOMER_REF>`, escape(customer.Reference))
		w(`    <SEQ>%03d</SEQ>`, i+1)
		w(`    <PRODUCT_ID>%s</PRODUCT_ID>`, escape(li.ProductID))
		w(`    <QUANTITY>%d</QUANTITY>`, li.Quantity)
		w(`    <DESCRIPTOR>%s</DESCRIPTOR>`, escape(e.lineDescriptor(li)))
		w(`    <PRICE_MATERIAL>%.2f</PRICE_MATERIAL>`, materialPart)
		w(`    <PRICE_FINISH>%.2f</PRICE_FINISH>`, finishPart)
		w(`    <PRICE_GROSS>%.2f</PRICE_GROSS>`, li.UnitPrice)
		w(`    <DISCOUNT>0</DISCOUNT>`)
		w(`    <NET_TOTAL>%.2f</NET_TOTAL>`, li.LineTotal)
		w(`  </ITEM>`)
	}

	w(`</ORDER>`)

	return e.encoder.Bytes([]byte(b.String()))
}

// lineDescriptor builds the composite encoded field the manufacturing
// system parses for one line item. Component order is fixed:
// model suffix, dimension triple, material tag, edge code, one color token
// per coated face slot (always four, always identical), the fixed
// processing and hole parameter blocks, finish code, color name, the
// secondary finish pair, and the trailing variant code.
func (e *Exporter) lineDescriptor(li domain.QuoteLineItem) string {
	cfg := li.Configuration

	parts := []string{
		modelSuffix(e.opts.MainModel),
		fmt.Sprintf("%dx%dx%d", cfg.LengthMM, cfg.WidthMM, cfg.HeightMM),
		e.opts.MaterialCode,
		e.opts.EdgeCode,
		e.opts.ColorCode,
		e.opts.ColorCode,
		e.opts.ColorCode,
		e.opts.ColorCode,
		processingParams,
		holeParams,
		e.opts.FinishCode,
		e.opts.ColorName,
		e.opts.SecondaryFinishCodes[0],
		e.opts.SecondaryFinishCodes[1],
		variantCode(li.ProductID),
	}

	return strings.Join(parts, ";")
}

// modelSuffix returns the segment after the last '-' of the model code, or
// the whole code when it has no segments.
func modelSuffix(model string) string {
	if idx := strings.LastIndex(model, "-"); idx >= 0 && idx+1 < len(model) {
		return model[idx+1:]
	}
	return model
}

// variantCode extracts the trailing two-digit variant from a product
// identifier like "PLT-EI-18-02". Identifiers without a numeric two-digit
// suffix fall back to DefaultVariantCode.
func variantCode(productID string) string {
	idx := strings.LastIndex(productID, "-")
	if idx < 0 || idx+1 >= len(productID) {
		return DefaultVariantCode
	}

	suffix := productID[idx+1:]
	if len(suffix) != 2 {
		return DefaultVariantCode
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return DefaultVariantCode
		}
	}
	return suffix
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escape substitutes the five XML metacharacters in free-text fields.
func escape(s string) string {
	return xmlEscaper.Replace(s)
}
