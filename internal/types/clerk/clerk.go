package clerk

// ClerkWebhookEvent is the envelope Clerk posts to our webhook endpoint for
// user lifecycle events (user.created, user.updated, user.deleted).
type ClerkWebhookEvent struct {
	Type string           `json:"type"`
	Data ClerkWebhookUser `json:"data"`
}

type ClerkWebhookUser struct {
	ID             string              `json:"id"`
	Username       *string             `json:"username"`
	FirstName      *string             `json:"first_name"`
	LastName       *string             `json:"last_name"`
	ImageURL       string              `json:"image_url"`
	EmailAddresses []ClerkEmailAddress `json:"email_addresses"`
	PrimaryEmailID string              `json:"primary_email_address_id"`
}

type ClerkEmailAddress struct {
	ID           string            `json:"id"`
	EmailAddress string            `json:"email_address"`
	Verification ClerkVerification `json:"verification"`
}

type ClerkVerification struct {
	Status string `json:"status"`
}

// PrimaryEmail returns the primary email address and whether it is verified.
func (u ClerkWebhookUser) PrimaryEmail() (string, bool) {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailID {
			return e.EmailAddress, e.Verification.Status == "verified"
		}
	}
	if len(u.EmailAddresses) > 0 {
		e := u.EmailAddresses[0]
		return e.EmailAddress, e.Verification.Status == "verified"
	}
	return "", false
}
