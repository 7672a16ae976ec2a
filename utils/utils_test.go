package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const key32 = "0123456789abcdef0123456789abcdef"

func TestEncryptDecryptToken(t *testing.T) {
	enc, err := EncryptToken(key32, "page-token")
	require.NoError(t, err)
	assert.NotEqual(t, "page-token", enc)

	again, err := EncryptToken(key32, "page-token")
	require.NoError(t, err)
	assert.NotEqual(t, enc, again, "nonce must differ per call")

	dec, err := DecryptToken(key32, enc)
	require.NoError(t, err)
	assert.Equal(t, "page-token", dec)
}

func TestEncryptToken_EmptyKeyIsPassthrough(t *testing.T) {
	enc, err := EncryptToken("", "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", enc)

	dec, err := DecryptToken("", "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", dec)
}

func TestDecryptToken_Errors(t *testing.T) {
	_, err := EncryptToken("short", "x")
	assert.ErrorIs(t, err, errInvalidEncryptionKeyLength)

	_, err = DecryptToken(key32, "AAAA")
	assert.ErrorIs(t, err, errCiphertextTooShort)

	enc, err := EncryptToken(key32, "secret")
	require.NoError(t, err)
	_, err = DecryptToken("fedcba9876543210fedcba9876543210", enc)
	assert.Error(t, err)
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, http.StatusNotFound, "Post not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Post not found"}`, rec.Body.String())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, logrus.ErrorLevel, parseLogLevel(" ERROR "))
	assert.Equal(t, logrus.InfoLevel, parseLogLevel("nonsense"))
}

func TestLoggerHandler_TagsSourceAndFields(t *testing.T) {
	l := NewLoggerHandler("INFO")
	l.entry.SetFormatter(&logrus.JSONFormatter{})
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.Debugf("hidden")
	assert.Zero(t, buf.Len())

	l.WithFields(map[string]interface{}{"post_id": "p1"}).Info("published")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "published", line["msg"])
	assert.Equal(t, "p1", line["post_id"])
	assert.Equal(t, "utils_test", line["source"])
}
