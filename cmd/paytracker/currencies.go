package main

import (
	"github.com/urfave/cli/v2"
)

var currencies = cli.Command{
	Name:   "currencies",
	Usage:  "list the settlement currencies supported by the gateway",
	Action: currenciesAction,
}

func currenciesAction(ctx *cli.Context) error {
	client, err := getGatewayService()
	if err != nil {
		return err
	}

	list, err := client.GetCurrencies()
	if err != nil {
		return err
	}

	printJSON(list)

	return nil
}
