package daraja

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestamp(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 5, 3, 0, time.UTC)

	assert.Equal(t, "20240601090503", Timestamp(at))
	assert.Len(t, Timestamp(time.Now()), 14)
}

func TestGeneratePassword(t *testing.T) {
	password := GeneratePassword("174379", "bfb279f9aa9bdbcf", "20240601090503")

	decoded, err := base64.StdEncoding.DecodeString(password)
	assert.NoError(t, err)
	assert.Equal(t, "174379bfb279f9aa9bdbcf20240601090503", string(decoded))
}
