package tax

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultInvoiceNumberTemplate    = "INV/{YYYY}-{MM}/{SEQ4}"
	DefaultCreditNoteNumberTemplate = "CN/{YYYY}-{MM}/{SEQ4}"
)

// IST is the zone in which document periods roll over.
var IST = time.FixedZone("IST", 5*60*60+30*60)

var seqPadRe = regexp.MustCompile(`\{SEQ([1-9]\d*)\}`)

// SequencePeriod returns the "YYYY-MM" scope of a document sequence.
func SequencePeriod(issuedAt time.Time) string {
	return issuedAt.In(IST).Format("2006-01")
}

// ValidateNumberTemplate checks that a template can never repeat a number.
// Sequences restart every IST month, so the template must carry a year token
// ({YYYY} or {YY}), {MM} and a sequence token ({SEQ} or {SEQn}).
func ValidateNumberTemplate(template string) error {
	switch {
	case template == "":
		return fmt.Errorf("document number template is empty")
	case !strings.Contains(template, "{YYYY}") && !strings.Contains(template, "{YY}"):
		return fmt.Errorf("document number template %q has no year token", template)
	case !strings.Contains(template, "{MM}"):
		return fmt.Errorf("document number template %q has no {MM} token", template)
	case !strings.Contains(template, "{SEQ}") && !seqPadRe.MatchString(template):
		return fmt.Errorf("document number template %q has no sequence token", template)
	}
	return nil
}

// FormatDocumentNumber renders a document number from a template, the issue
// time and a monotonic sequence. Supported tokens: {YYYY} {YY} {MM} {DD}
// {SEQ} and {SEQn} (zero-padded to n digits).
func FormatDocumentNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if err := ValidateNumberTemplate(template); err != nil {
		return "", err
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid document sequence: %d", seq)
	}

	t := issuedAt.In(IST)
	out := template
	out = strings.ReplaceAll(out, "{YYYY}", t.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", t.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", t.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", t.Format("02"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in document number template: %s", out)
	}
	return out, nil
}
