package models

import (
	"time"
)

type Transaction struct {
	ID             string    `db:"id" json:"id"`
	JobID          string    `db:"job_id" json:"jobId"`
	PayerID        string    `db:"payer_id" json:"payerId"`
	PayeeID        string    `db:"payee_id" json:"payeeId"`
	Amount         float64   `db:"amount" json:"amount"`
	PlatformFee    float64   `db:"platform_fee" json:"platformFee"`
	ProviderAmount float64   `db:"provider_amount" json:"providerAmount"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

type CreatePaymentIntentRequest struct {
	JobID  string  `json:"jobId" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
