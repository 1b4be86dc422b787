package cmd

import (
	"errors"
	"fmt"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"

	"github.com/spf13/cobra"
)

var courierCmd = &cobra.Command{
	Use:   "courier",
	Short: "Courier tools: browse the pool of ready orders and claim one",
}

var courierAvailableCmd = &cobra.Command{
	Use:   "available",
	Short: "List READY orders nobody has claimed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCourierSession()
		if err != nil {
			return err
		}
		defer s.kv.Close()

		printSnapshot(cmd, s.orders().Available(cmd.Context()))
		return nil
	},
}

var courierClaimCmd = &cobra.Command{
	Use:   "claim <orderId>",
	Short: "Claim an order for pickup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCourierSession()
		if err != nil {
			return err
		}
		defer s.kv.Close()

		repo := s.orders()
		order, err := repo.Claim(cmd.Context(), args[0])
		if errors.Is(err, apperr.ErrConflict) {
			fmt.Fprintln(cmd.OutOrStdout(), "Another courier got there first. Still available:")
			printSnapshot(cmd, repo.Pool())
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Picked up order %s from %s\n", order.ID, order.RestaurantName)
		return nil
	},
}

func openCourierSession() (*session, error) {
	s, err := openSession(true)
	if err != nil {
		return nil, err
	}
	if s.me.Role != model.RoleCourier {
		s.kv.Close()
		return nil, fmt.Errorf("logged in as %s, courier commands need a courier login", s.me.Role)
	}
	return s, nil
}

func init() {
	courierCmd.AddCommand(courierAvailableCmd, courierClaimCmd)
	rootCmd.AddCommand(courierCmd)
}
