// Package ipn verifies payment-gateway webhook signatures.
package ipn

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
)

// Sign computes the hex HMAC-SHA512 the gateway would attach to payload. The
// gateway signs the body re-serialized with object keys sorted
// lexicographically; both sides must serialize identically, so the payload is
// decoded into a map and marshalled again (encoding/json sorts map keys,
// recursively).
func Sign(payload []byte, secret string) (string, error) {
	sorted, err := sortedJSON(payload)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(sorted)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks providedSig against the recomputed signature of payload. An
// empty secret disables verification entirely and accepts everything; that is
// the gateway's optional-IPN mode and is intentionally weak, not a bug.
func Verify(payload []byte, providedSig, secret string) (bool, error) {
	if secret == "" {
		return true, nil
	}

	expected, err := Sign(payload, secret)
	if err != nil {
		return false, err
	}

	return hmac.Equal([]byte(expected), []byte(providedSig)), nil
}

func sortedJSON(payload []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	// keep numbers byte-identical through the round trip
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	return json.Marshal(doc)
}
