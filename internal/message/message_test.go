package message

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestMessage_CheckHash(t *testing.T) {
	body := `{"x":1,"y":2}`

	t.Run("matching digest passes", func(t *testing.T) {
		m := Message{Body: body, MD5OfBody: md5hex(body)}
		assert.True(t, m.CheckHash())
	})

	t.Run("mismatched digest fails", func(t *testing.T) {
		m := Message{Body: "hoge", MD5OfBody: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}
		assert.False(t, m.CheckHash())
	})

	t.Run("is pure across copies", func(t *testing.T) {
		m := Message{Body: body, MD5OfBody: md5hex(body), ReceiptHandle: "r1", ID: "id1"}
		cp := m
		assert.Equal(t, m.CheckHash(), cp.CheckHash())
	})
}
