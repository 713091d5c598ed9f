package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
)

var (
	gatewayUrlFlag = cli.StringFlag{
		Name:  "gateway_url",
		Usage: "base url of the payment gateway HTTP API",
		Value: "http://localhost:3000",
	}

	sourceCurrencyFlag = cli.StringFlag{
		Name:  "source_currency",
		Usage: "the fiat currency amounts are priced in",
		Value: "usd",
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the paytracker CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&gatewayUrlFlag,
				&sourceCurrencyFlag,
			},
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	for key, value := range state {
		fmt.Println(key + ": " + value)
	}

	return nil
}

func configInitAction(c *cli.Context) error {
	return setState(map[string]string{
		"gateway_url":     c.String("gateway_url"),
		"source_currency": c.String("source_currency"),
	})
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s %s has been set\n", key, value)

	return nil
}
