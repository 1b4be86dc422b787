package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/tugrulsicakyuz/mobile-delivy/client/apiclient"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"
	"github.com/tugrulsicakyuz/mobile-delivy/client/orders"
	"github.com/tugrulsicakyuz/mobile-delivy/client/store"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `delivy login` first")

type session struct {
	kv    *store.KV
	api   *apiclient.Client
	cache *store.Cache
	me    *model.Identity
}

func openSession(requireLogin bool) (*session, error) {
	kv, err := store.Open(settings.Client.DBPath)
	if err != nil {
		return nil, err
	}
	s := &session{
		kv:    kv,
		api:   apiclient.New(settings.Client.BaseURL, nil, settings.Client.Timeout),
		cache: store.NewCache(kv, settings.Chat.Retention),
	}
	s.me, err = store.NewIdentityStore(kv).Current()
	if err != nil {
		kv.Close()
		return nil, err
	}
	if requireLogin && s.me == nil {
		kv.Close()
		return nil, errNotLoggedIn
	}
	return s, nil
}

func (s *session) orders() *orders.Repository {
	return orders.NewRepository(*s.me, s.api, s.cache)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Create a local identity (customer, restaurant or courier)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.kv.Close()

		f := cmd.Flags()
		name, _ := f.GetString("name")
		phone, _ := f.GetString("phone")
		address, _ := f.GetString("address")
		role, _ := f.GetString("role")
		vehicle, _ := f.GetString("vehicle")

		me, err := store.NewIdentityStore(s.kv).Login(model.Identity{
			FullName:    name,
			Phone:       phone,
			Address:     address,
			Role:        model.Role(strings.ToUpper(role)),
			VehicleInfo: vehicle,
		})
		if err != nil {
			return err
		}
		if me.Role == model.RoleRestaurant {
			if _, err := s.api.UpsertRestaurant(cmd.Context(), model.Restaurant{ID: me.ID, Name: me.FullName, IsActive: true}); err != nil {
				return fmt.Errorf("register restaurant: %w", err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s), id %s\n", me.FullName, me.Role, me.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the local identity and everything cached for it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.kv.Close()
		return store.NewIdentityStore(s.kv).Logout()
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "cart-add <restaurantId> <itemId> [quantity]",
	Short: "Add a menu item to the cart",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		defer s.kv.Close()

		qty := 1
		if len(args) == 3 {
			if _, err := fmt.Sscanf(args[2], "%d", &qty); err != nil {
				return fmt.Errorf("quantity: %w", err)
			}
		}

		menu, err := s.api.Menu(cmd.Context(), args[0])
		if err != nil {
			cached, cacheErr := s.cache.LoadMenu(args[0])
			if cacheErr != nil || len(cached) == 0 {
				return fmt.Errorf("menu unavailable: %w", err)
			}
			menu = cached
		} else if err := s.cache.SaveMenu(args[0], menu); err != nil {
			log.Warnf("Failed to cache menu of %s: %v", args[0], err)
		}

		var item *model.MenuItem
		for i := range menu {
			if menu[i].ID == args[1] {
				item = &menu[i]
			}
		}
		if item == nil {
			return fmt.Errorf("item %s not on the menu of %s", args[1], args[0])
		}

		restaurantName := args[0]
		if rests, err := s.api.Restaurants(cmd.Context()); err == nil {
			for _, r := range rests {
				if r.ID == args[0] {
					restaurantName = r.Name
				}
			}
		}

		added, err := store.NewCartStore(s.kv).AddItem(*item, restaurantName, qty, func(current string) bool {
			return confirm(cmd, fmt.Sprintf("Your cart contains items from %s. Clear it and add this item instead?", current))
		})
		if err != nil {
			return err
		}
		if added {
			fmt.Fprintf(cmd.OutOrStdout(), "Added %dx %s\n", qty, item.Name)
		}
		return nil
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart; --set <itemId>=<qty> changes a line, qty 0 removes it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		defer s.kv.Close()

		cart := store.NewCartStore(s.kv)
		updates, _ := cmd.Flags().GetStringToInt("set")
		for itemID, qty := range updates {
			if qty == 0 {
				err = cart.Remove(itemID)
			} else {
				err = cart.SetQuantity(itemID, qty)
			}
			if err != nil {
				return err
			}
		}

		lines, err := cart.Lines()
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Cart is empty")
			return nil
		}
		total, err := cart.Total()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "From %s\n", lines[0].RestaurantName)
		for _, l := range lines {
			fmt.Fprintf(w, "%dx\t%s\t%.2f\n", l.Quantity, l.Name, l.Price*float64(l.Quantity))
		}
		fmt.Fprintf(w, "\tTotal\t%.2f\n", total)
		return w.Flush()
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place the cart as an order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		defer s.kv.Close()

		order, err := s.orders().Checkout(cmd.Context(), store.NewCartStore(s.kv))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s placed, total $%.2f\n", order.ID, order.TotalAmount)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders (watch with --watch)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		defer s.kv.Close()

		active, _ := cmd.Flags().GetBool("active")
		watch, _ := cmd.Flags().GetBool("watch")
		repo := s.orders()
		if !watch {
			printSnapshot(cmd, repo.Load(cmd.Context(), active))
			return nil
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()
		p := orders.NewPoller(repo, func(snap orders.Snapshot) { printSnapshot(cmd, snap) })
		p.ActiveOnly = active
		p.Run(ctx)
		return nil
	},
}

var orderCmd = &cobra.Command{
	Use:   "order <orderId>",
	Short: "Show one order with its lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.kv.Close()

		order, err := s.api.GetOrder(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Order %s from %s: %s\n", order.ID, order.RestaurantName, order.Status)
		for _, item := range order.OrderItems {
			fmt.Fprintf(w, "%dx\t%s\t%.2f\n", item.Quantity, item.Name, item.Price*float64(item.Quantity))
		}
		fmt.Fprintf(w, "\tTotal\t%.2f\n", order.TotalAmount)
		if order.CourierName != "" {
			fmt.Fprintf(w, "Courier: %s\n", order.CourierName)
		}
		return w.Flush()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <orderId> <STATUS>",
	Short: "Move an order to the next status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		defer s.kv.Close()

		order, err := s.orders().UpdateStatus(cmd.Context(), args[0], model.Status(strings.ToUpper(args[1])))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s\n", order.ID, order.Status)
		return nil
	},
}

func printSnapshot(cmd *cobra.Command, snap orders.Snapshot) {
	out := cmd.OutOrStdout()
	if snap.Err != nil {
		fmt.Fprintf(out, "! showing cached data: %v\n", snap.Err)
	}
	if len(snap.Orders) == 0 {
		if snap.Err == nil {
			fmt.Fprintln(out, "No orders yet")
		}
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRESTAURANT\tSTATUS\tTOTAL\tCOURIER")
	for _, o := range snap.Orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", o.ID, o.RestaurantName, o.Status, o.TotalAmount, o.CourierName)
	}
	w.Flush()
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func init() {
	f := loginCmd.Flags()
	f.String("name", "", "full name")
	f.String("phone", "", "phone number")
	f.String("address", "", "delivery address")
	f.String("role", "customer", "customer, restaurant or courier")
	f.String("vehicle", "", "vehicle info (couriers)")
	loginCmd.MarkFlagRequired("name")

	cartCmd.Flags().StringToInt("set", nil, "itemId=quantity pairs to apply before showing the cart")

	ordersCmd.Flags().Bool("active", false, "only orders still in progress")
	ordersCmd.Flags().Bool("watch", false, "keep polling")

	rootCmd.AddCommand(loginCmd, logoutCmd, cartAddCmd, cartCmd, checkoutCmd, ordersCmd, orderCmd, statusCmd)
}
