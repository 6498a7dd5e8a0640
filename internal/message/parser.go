// Package message turns raw messenger inquiry text into a structured record.
//
// The upstream format is hand-typed chat text, not a schema: labels, colons,
// and section markers differ between format revisions. Parsing is therefore
// tolerant by design — whatever matches is extracted, everything else is
// ignored, and no input ever fails.
package message

import (
	"strings"

	"leadline/internal/domain"
)

// Field names accepted as alias targets in parser configuration.
const (
	FieldSiteName         = "site_name"
	FieldConstructionType = "construction_type"
	FieldBuildingType     = "building_type"
	FieldAddress          = "address"
	FieldUnits            = "units"
	FieldCustomerType     = "customer_type"
	FieldContact          = "contact"
	FieldContactName      = "contact_name"
	FieldSource           = "source"
	FieldInquiry          = "inquiry"
)

type rule struct {
	field  string
	labels []string
	apply  func(*domain.Inquiry, string, segment)
}

// Parser extracts structured inquiries from raw message text. The zero
// configuration (New()) understands every format revision seen so far;
// options extend it for future ones.
type Parser struct {
	markers []string
	main    []rule
	memo    []rule
}

type Option func(*Parser)

// WithMarkers overrides the section marker glyphs.
func WithMarkers(markers []string) Option {
	return func(p *Parser) {
		if len(markers) > 0 {
			p.markers = markers
		}
	}
}

// WithAliases registers extra labels per field, e.g.
// {"address": {"현장주소"}}. Unknown field names are ignored.
func WithAliases(aliases map[string][]string) Option {
	return func(p *Parser) {
		for i, r := range p.main {
			if extra, ok := aliases[r.field]; ok {
				p.main[i].labels = append(p.main[i].labels, extra...)
			}
		}
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{
		markers: defaultMarkers,
		main:    mainRules(),
		memo:    memoRules(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts raw message text into a structured inquiry. It is pure and
// never fails: unrecognized input yields a record with every field at its
// default.
func Parse(text string) domain.Inquiry {
	return New().Parse(text)
}

func (p *Parser) Parse(text string) domain.Inquiry {
	var inq domain.Inquiry
	secs := splitSections(text, p.markers)
	inquiryOpen := false
	for _, seg := range secs.main {
		field, ok := p.applyFirst(p.main, &inq, seg)
		if ok {
			inquiryOpen = field == FieldInquiry
			continue
		}
		// An unmatched segment inside an open 문의내용 section is part of
		// the inquiry body, e.g. a continuation line carrying a colon.
		if inquiryOpen && keepContinuation(seg.line) {
			inq.Inquiry = joinInquiry(inq.Inquiry, seg)
		}
	}
	// Memo lines carry one field each; the memo section is processed after
	// the main section so its construction type wins.
	for _, line := range secs.memo {
		p.applyFirst(p.memo, &inq, segment{line: line})
	}
	return inq
}

func (p *Parser) applyFirst(rules []rule, inq *domain.Inquiry, seg segment) (string, bool) {
	for _, r := range rules {
		for _, label := range r.labels {
			if value, ok := labelValue(seg.line, label); ok {
				r.apply(inq, value, seg)
				return r.field, true
			}
		}
	}
	return "", false
}

func joinInquiry(current string, seg segment) string {
	parts := make([]string, 0, len(seg.rest)+2)
	if current != "" {
		parts = append(parts, current)
	}
	parts = append(parts, seg.line)
	parts = append(parts, seg.rest...)
	return strings.Join(parts, " ")
}

func set(dst func(*domain.Inquiry) *string) func(*domain.Inquiry, string, segment) {
	return func(inq *domain.Inquiry, value string, _ segment) {
		*dst(inq) = value
	}
}

// mainRules is the label registry for the customer-facing region, checked in
// priority order. The combined contact/name label must precede the plain
// contact label.
func mainRules() []rule {
	return []rule{
		{field: FieldSiteName, labels: []string{"현장"}, apply: set(func(i *domain.Inquiry) *string { return &i.SiteName })},
		{field: FieldBuildingType, labels: []string{"건물유형"}, apply: set(func(i *domain.Inquiry) *string { return &i.BuildingType })},
		{field: FieldAddress, labels: []string{"주소", "건물주소"}, apply: set(func(i *domain.Inquiry) *string { return &i.Address })},
		{field: FieldUnits, labels: []string{"단지개요"}, apply: set(func(i *domain.Inquiry) *string { return &i.Units })},
		{field: FieldCustomerType, labels: []string{"고객유형"}, apply: set(func(i *domain.Inquiry) *string { return &i.CustomerType })},
		{field: FieldContact, labels: []string{"연락처/성함"}, apply: func(i *domain.Inquiry, value string, _ segment) {
			i.Contact, i.ContactName = splitContactName(value)
		}},
		{field: FieldContact, labels: []string{"연락처"}, apply: func(i *domain.Inquiry, value string, _ segment) {
			i.Contact = unwrapTel(value)
		}},
		{field: FieldContactName, labels: []string{"담당자", "성함"}, apply: set(func(i *domain.Inquiry) *string { return &i.ContactName })},
		{field: FieldSource, labels: []string{"유입경로"}, apply: set(func(i *domain.Inquiry) *string { return &i.Source })},
		{field: FieldInquiry, labels: []string{"문의내용"}, apply: func(i *domain.Inquiry, value string, seg segment) {
			parts := make([]string, 0, len(seg.rest)+1)
			if value != "" {
				parts = append(parts, value)
			}
			parts = append(parts, seg.rest...)
			i.Inquiry = strings.Join(parts, " ")
		}},
		{field: FieldConstructionType, labels: []string{"공사유형"}, apply: func(i *domain.Inquiry, value string, _ segment) {
			// The construction type is duplicated into the memo wherever
			// the label appears; a memo-region value still wins.
			i.ConstructionType = value
			i.Memo.ConstructionType = value
		}},
	}
}

// memoRules is the label registry for the internal memo region. Construction
// type is authoritative here and mirrors into the top-level field.
func memoRules() []rule {
	return []rule{
		{field: FieldConstructionType, labels: []string{"공사유형"}, apply: func(i *domain.Inquiry, value string, _ segment) {
			i.Memo.ConstructionType = value
			i.ConstructionType = value
		}},
		{field: "expected_date", labels: []string{"예정시기"}, apply: func(i *domain.Inquiry, value string, _ segment) {
			i.Memo.ExpectedDate = value
		}},
		{field: "note", labels: []string{"특이사항"}, apply: func(i *domain.Inquiry, value string, _ segment) {
			i.Memo.Note = value
		}},
	}
}
