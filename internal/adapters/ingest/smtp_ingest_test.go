package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestDataUnreadableMailNotBounced(t *testing.T) {
	sess := &smtpSession{ingest: NewSMTPIngest(nil, zap.NewNop(), ":0", "", 0)}
	assert.NoError(t, sess.Data(failingReader{}))
}

func TestDataMalformedMailNotBounced(t *testing.T) {
	sess := &smtpSession{ingest: NewSMTPIngest(nil, zap.NewNop(), ":0", "", 0)}
	assert.NoError(t, sess.Data(strings.NewReader("this is not an rfc822 message")))
}
