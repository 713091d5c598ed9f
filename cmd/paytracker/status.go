package main

import (
	"github.com/urfave/cli/v2"
)

var status = cli.Command{
	Name:      "status",
	Usage:     "fetch the current status of a payment",
	ArgsUsage: "<payment id>",
	Action:    statusAction,
}

func statusAction(ctx *cli.Context) error {
	paymentId := ctx.Args().First()
	if len(paymentId) <= 0 {
		return &invalidUsageError{ctx, "status"}
	}

	client, err := getGatewayService()
	if err != nil {
		return err
	}

	info, err := client.GetPaymentStatus(paymentId)
	if err != nil {
		return err
	}

	printJSON(info)

	return nil
}
