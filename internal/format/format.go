package format

import (
	"fmt"
	"time"

	"github.com/billedhq/billed/internal/models"
)

// Accepted layouts for stored bill dates. The store serves plain calendar
// dates; RFC 3339 shows up in older records.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// French short month names as rendered by the display layer, already
// truncated to three letters.
var shortMonthsFR = [12]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jui",
	"Jui", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

// Date renders a stored date string as the short localized display form,
// e.g. "2023-01-01" becomes "1 Jan. 23". It returns an error when the
// input is not a parseable date; callers decide whether to keep the raw
// value instead.
func Date(raw string) (string, error) {
	var t time.Time
	var err error
	for _, layout := range dateLayouts {
		t, err = time.Parse(layout, raw)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("unparseable date %q: %w", raw, err)
	}

	month := shortMonthsFR[t.Month()-1]
	return fmt.Sprintf("%d %s. %02d", t.Day(), month, t.Year()%100), nil
}

// Status maps a wire status value to its display label. Unknown values
// pass through unchanged so a bad record still renders.
func Status(status string) string {
	switch status {
	case models.StatusPending:
		return "En attente"
	case models.StatusAccepted:
		return "Accepté"
	case models.StatusRefused:
		return "Refused"
	default:
		return status
	}
}
