package format

import (
	"testing"

	"github.com/billedhq/billed/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{
			name:     "formats plain calendar date",
			raw:      "2023-01-01",
			expected: "1 Jan. 23",
		},
		{
			name:     "formats february date",
			raw:      "2023-02-01",
			expected: "1 Fév. 23",
		},
		{
			name:     "strips leading zero from day",
			raw:      "2023-05-25",
			expected: "25 Mai. 23",
		},
		{
			name:     "formats december date",
			raw:      "2021-12-31",
			expected: "31 Déc. 21",
		},
		{
			name:    "rejects unparseable date",
			raw:     "invalid-date",
			wantErr: true,
		},
		{
			name:    "rejects empty string",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Date(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected string
	}{
		{
			name:     "maps pending to En attente",
			status:   models.StatusPending,
			expected: "En attente",
		},
		{
			name:     "maps accepted to Accepté",
			status:   models.StatusAccepted,
			expected: "Accepté",
		},
		{
			name:     "maps refused to Refused",
			status:   models.StatusRefused,
			expected: "Refused",
		},
		{
			name:     "passes unknown value through",
			status:   "archived",
			expected: "archived",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Status(tt.status))
		})
	}
}
