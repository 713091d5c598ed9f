package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/pawmart/paytracker/internal/core/application"
)

var create = cli.Command{
	Name:   "create",
	Usage:  "create a payment intent on the gateway",
	Action: createAction,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "order_id",
			Usage: "the merchant order the payment settles, generated if omitted",
		},
		&cli.StringFlag{
			Name:     "currency",
			Usage:    "the settlement currency",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "network",
			Usage:    "the settlement network",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount to deposit, in the settlement currency",
			Required: true,
		},
	},
}

func createAction(ctx *cli.Context) error {
	amount, err := decimal.NewFromString(ctx.String("amount"))
	if err != nil {
		return fmt.Errorf("invalid amount: %v", err)
	}

	client, err := getGatewayService()
	if err != nil {
		return err
	}

	catalog := application.NewCurrencyCatalog(client)
	paymentSvc := application.NewPaymentService(client, catalog, nil)

	payment, err := paymentSvc.CreatePayment(
		context.Background(),
		ctx.String("order_id"), ctx.String("currency"), ctx.String("network"),
		amount,
	)
	if err != nil {
		return err
	}

	printJSON(payment)

	return nil
}
