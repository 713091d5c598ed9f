package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var estimate = cli.Command{
	Name:   "estimate",
	Usage:  "estimate the settlement amount for a source amount and currency",
	Action: estimateAction,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount to convert, in the source currency",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "currency",
			Usage:    "the settlement currency to convert to",
			Required: true,
		},
	},
}

func estimateAction(ctx *cli.Context) error {
	amount, err := decimal.NewFromString(ctx.String("amount"))
	if err != nil {
		return fmt.Errorf("invalid amount: %v", err)
	}

	client, err := getGatewayService()
	if err != nil {
		return err
	}

	estimatedAmount, err := client.GetEstimate(
		amount, getSourceCurrency(), ctx.String("currency"),
	)
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"estimatedAmount": estimatedAmount,
		"currency":        ctx.String("currency"),
	})

	return nil
}
