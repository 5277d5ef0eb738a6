package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/rawanamrrr/alanod-api/internal/domain/discount"
)

// identityFromRequest resolves the caller's identity from an optional Bearer
// session token. A valid token yields a registered-user identity; anything
// else degrades to a guest scoped by the request's email, if any. The
// discount routes never reject on bad credentials — absence of a valid
// credential simply means guest.
func (h *Handler) identityFromRequest(r *http.Request, fallbackEmail string) discount.Identity {
	token := bearerToken(r)
	if token == "" || h.sessions == nil {
		return discount.Guest(fallbackEmail)
	}

	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(token))
	hash := mac.Sum(nil)

	info, err := h.sessions.FindByHash(r.Context(), hex.EncodeToString(hash))
	if err != nil {
		return discount.Guest(fallbackEmail)
	}

	// Constant-time comparison guards against timing side-channels even though
	// the lookup already succeeded.
	stored, err := hex.DecodeString(info.TokenHash)
	if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
		return discount.Guest(fallbackEmail)
	}

	return discount.User(info.UserID)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
