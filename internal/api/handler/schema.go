package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request / Response types ---

type registerRequest struct {
	UID   string `json:"uid"   validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type verifyPurchaseRequest struct {
	UID           string `json:"uid"            validate:"required"`
	PlanType      string `json:"plan_type"      validate:"required"`
	PurchaseToken string `json:"purchase_token"`
}

type userStatusResponse struct {
	UID              string `json:"uid"`
	PlanType         string `json:"plan_type"`
	GenerationsToday int    `json:"generations_today"`
	DailyLimit       int    `json:"daily_limit"`
}

type speakRequest struct {
	UID          string `json:"uid"            validate:"required"`
	Text         string `json:"text"`
	Voice        string `json:"voice"`
	Mood         string `json:"mood"`
	AdProofToken string `json:"ad_proof_token"`
}
