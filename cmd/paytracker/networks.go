package main

import (
	"github.com/urfave/cli/v2"
)

var networks = cli.Command{
	Name:      "networks",
	Usage:     "list the settlement networks of a currency",
	ArgsUsage: "<currency>",
	Action:    networksAction,
}

func networksAction(ctx *cli.Context) error {
	currencyCode := ctx.Args().First()
	if len(currencyCode) <= 0 {
		return &invalidUsageError{ctx, "networks"}
	}

	client, err := getGatewayService()
	if err != nil {
		return err
	}

	list, err := client.GetNetworks(currencyCode)
	if err != nil {
		return err
	}

	printJSON(list)

	return nil
}
