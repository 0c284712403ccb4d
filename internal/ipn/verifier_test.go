package ipn

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret"

func TestVerifyMatchesGatewaySignature(t *testing.T) {
	payload := []byte(`{"payment_id":5745459419,"payment_status":"finished","order_id":"ORD-1700000000000-r7-gold","actually_paid":0.052}`)

	sig, err := Sign(payload, testSecret)
	require.NoError(t, err)

	ok, err := Verify(payload, sig, testSecret)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignIsKeyOrderInsensitive(t *testing.T) {
	unordered := []byte(`{"payment_status":"finished","order_id":"ORD-1-r7-gold","actually_paid":0.052}`)
	ordered := []byte(`{"actually_paid":0.052,"order_id":"ORD-1-r7-gold","payment_status":"finished"}`)

	sigA, err := Sign(unordered, testSecret)
	require.NoError(t, err)
	sigB, err := Sign(ordered, testSecret)
	require.NoError(t, err)

	assert.Equal(t, sigA, sigB)

	ok, err := Verify(unordered, sigB, testSecret)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyRejectsFlippedPayloadByte(t *testing.T) {
	payload := []byte(`{"order_id":"ORD-1-r7-gold","payment_status":"finished"}`)

	sig, err := Sign(payload, testSecret)
	require.NoError(t, err)

	tampered := bytes.Replace(payload, []byte("finished"), []byte("finishes"), 1)
	require.NotEqual(t, payload, tampered)

	ok, err := Verify(tampered, sig, testSecret)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"order_id":"ORD-1-r7-gold"}`)

	sig, err := Sign(payload, testSecret)
	require.NoError(t, err)

	ok, err := Verify(payload, sig, "some-other-secret")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyEmptySecretAcceptsEverything(t *testing.T) {
	ok, err := Verify([]byte(`{"anything":true}`), "garbage-signature", "")
	require.NoError(t, err)
	assert.True(t, ok)

	// weak mode never even parses the body
	ok, err = Verify([]byte(`not json at all`), "", "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMalformedPayload(t *testing.T) {
	_, err := Verify([]byte(`{broken`), "sig", testSecret)
	assert.Error(t, err)
}
