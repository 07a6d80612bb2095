package push

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       Result
	}{
		{"created", http.StatusCreated, ResultSuccess},
		{"ok", http.StatusOK, ResultSuccess},
		{"not found", http.StatusNotFound, ResultPermanentlyInvalid},
		{"gone", http.StatusGone, ResultPermanentlyInvalid},
		{"bad request", http.StatusBadRequest, ResultTransient},
		{"unauthorized", http.StatusUnauthorized, ResultTransient},
		{"too many requests", http.StatusTooManyRequests, ResultTransient},
		{"internal error", http.StatusInternalServerError, ResultTransient},
		{"bad gateway", http.StatusBadGateway, ResultTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.statusCode))
		})
	}
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "success", ResultSuccess.String())
	assert.Equal(t, "transient", ResultTransient.String())
	assert.Equal(t, "permanently_invalid", ResultPermanentlyInvalid.String())
}
