package auth

import (
	"strings"
	"unicode"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

// Username derives a handle from the email's local part: lower case,
// letters and digits only. Falls back to user_ and the first 8 characters
// of the user id.
func Username(email, userID string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		return b.String()
	}
	short := userID
	if len(short) > 8 {
		short = short[:8]
	}
	return "user_" + short
}

// DisplayName picks the first non-blank of the supplied name, the
// provider's display name and the email's local part, else "User".
func DisplayName(fullName, providerName, email string) string {
	local, _, _ := strings.Cut(email, "@")
	for _, candidate := range []string{fullName, providerName, local} {
		if c := strings.TrimFunc(candidate, unicode.IsSpace); c != "" {
			return c
		}
	}
	return "User"
}

func newProfile(id, email, fullName, providerName, picture string) *model.User {
	return &model.User{
		ID:                id,
		Username:          Username(email, id),
		FullName:          DisplayName(fullName, providerName, email),
		Email:             email,
		ProfilePictureURL: picture,
	}
}
