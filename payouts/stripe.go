package payouts

import (
	"os"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
	"github.com/stripe/stripe-go/v82/transfer"
)

// StripeTransferClient sends payouts through the Stripe transfers API.
type StripeTransferClient struct{}

func (StripeTransferClient) CreateTransfer(accountID string, amount int) error {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	_, err := transfer.New(&stripe.TransferParams{
		Amount:      stripe.Int64(int64(amount)),
		Currency:    stripe.String(string(stripe.CurrencyGBP)),
		Destination: stripe.String(accountID),
	})
	return err
}

// CreateConnectAccount creates the Stripe Express account a channel is paid
// through and returns its ID.
func CreateConnectAccount(email string) (string, error) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	acct, err := account.New(&stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String("GB"),
		Email:   stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return acct.ID, nil
}

// CreateAccountLink returns a fresh Stripe onboarding URL for a connect
// account.
func CreateAccountLink(accountID string) (string, error) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}

	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(frontend + "/login"),
		ReturnURL:  stripe.String(frontend),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return "", err
	}
	return link.URL, nil
}
