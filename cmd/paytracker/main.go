package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"

	"github.com/pawmart/paytracker/pkg/gateway"
)

var (
	paytrackerDataDir = btcutil.AppDataDir("paytracker-cli", false)
	statePath         = path.Join(paytrackerDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "paytracker CLI"
	app.Usage = "Command line interface for the deposit payment tracker"
	app.Commands = append(
		app.Commands,
		&config,
		&currencies,
		&networks,
		&estimate,
		&create,
		&status,
		&track,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := ioutil.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	json.Unmarshal(file, &data)

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(paytrackerDataDir); os.IsNotExist(err) {
		os.Mkdir(paytrackerDataDir, os.ModeDir|0755)
	}

	file, err := os.OpenFile(statePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	currentData, err := getState()
	if err != nil {
		return err
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(statePath, jsonString, 0755); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

func getGatewayService() (gateway.Service, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}

	gatewayUrl, ok := state["gateway_url"]
	if !ok {
		return nil, errors.New("set gateway_url with `config set gateway_url`")
	}

	return gateway.NewService(gatewayUrl)
}

func getSourceCurrency() string {
	state, err := getState()
	if err != nil {
		return "usd"
	}
	if sourceCurrency, ok := state["source_currency"]; ok {
		return sourceCurrency
	}
	return "usd"
}

func printJSON(resp interface{}) {
	jsonString, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}

	fmt.Println(string(jsonString))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[paytracker] %v\n", err)
	}
	os.Exit(1)
}
