package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pawmart/paytracker/internal/core/application"
	"github.com/pawmart/paytracker/internal/core/domain"
	"github.com/pawmart/paytracker/pkg/gateway"
)

var track = cli.Command{
	Name:      "track",
	Usage:     "follow the lifecycle of a payment until it reaches a terminal status",
	ArgsUsage: "<payment id>",
	Action:    trackAction,
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "interval",
			Usage: "seconds between two status polls",
			Value: 10,
		},
	},
}

func trackAction(ctx *cli.Context) error {
	paymentId := ctx.Args().First()
	if len(paymentId) <= 0 {
		return &invalidUsageError{ctx, "track"}
	}

	client, err := getGatewayService()
	if err != nil {
		return err
	}

	info, err := client.GetPaymentStatus(paymentId)
	if err != nil {
		return err
	}
	if info.ExpiresAt.Unix() <= 0 {
		return errors.New("payment has no expiry time, nothing to track")
	}

	payment := paymentFromInfo(paymentId, info)
	if payment.IsTerminal() {
		printJSON(info)
		return nil
	}

	trackerSvc := application.NewTrackerService(application.TrackerOpts{
		GatewaySvc:   client,
		PollInterval: time.Duration(ctx.Int("interval")) * time.Second,
	})
	defer trackerSvc.StopAll()

	done := make(chan application.Snapshot, 1)
	controller, err := trackerSvc.TrackPayment(payment, func(s application.Snapshot) {
		done <- s
	})
	if err != nil {
		return err
	}

	fmt.Printf(
		"deposit %s %s to %s\n",
		payment.Amount, payment.Currency, payment.Address,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	for {
		select {
		case snapshot := <-controller.Notifications():
			fmt.Printf(
				"\rstatus: %-10s expires in: %4ds",
				snapshot.Status, snapshot.RemainingSeconds,
			)
		case snapshot := <-done:
			fmt.Printf(
				"\npayment %s reached terminal status %s\n",
				snapshot.PaymentId, snapshot.Status,
			)
			if len(snapshot.TransactionUrl) > 0 {
				fmt.Println("transaction: " + snapshot.TransactionUrl)
			}
			return nil
		case <-sigChan:
			fmt.Println("\nstopped tracking")
			return nil
		}
	}
}

func paymentFromInfo(paymentId string, info *gateway.PaymentInfo) *domain.Payment {
	payment := &domain.Payment{
		Id:         paymentId,
		OrderId:    info.OrderId,
		Currency:   info.Currency,
		Network:    info.Network,
		Amount:     info.Amount,
		Address:    info.Address,
		QrPayload:  info.QrPayload,
		Status:     domain.PaymentStatus{Code: domain.PaymentStatusCodeNew},
		ExpiryTime: info.ExpiresAt.Unix(),
	}
	if len(info.Id) > 0 {
		payment.Id = info.Id
	}
	if parsed, ok := gateway.ParseStatus(info.Status); ok {
		payment.Status = parsed
	}
	if len(info.TransactionUrl) > 0 {
		payment.TransactionUrl = info.TransactionUrl
	}
	return payment
}
