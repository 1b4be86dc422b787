package cmd

import (
	"fmt"
	"math"

	"github.com/tugrulsicakyuz/mobile-delivy/client/apiclient"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dishes = map[string][]string{
	"Mains":    {"Burger", "Wrap", "Noodle Bowl", "Pizza", "Curry"},
	"Sides":    {"Fries", "Salad", "Onion Rings"},
	"Drinks":   {"Lemonade", "Iced Tea", "Cola"},
	"Desserts": {"Brownie", "Cheesecake", "Sundae"},
}

var categories = []string{"Mains", "Sides", "Drinks", "Desserts"}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create fake restaurants with menus through the public API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		restaurants, _ := cmd.Flags().GetInt("restaurants")
		items, _ := cmd.Flags().GetInt("items")

		api := apiclient.New(settings.Client.BaseURL, nil, settings.Client.Timeout)
		fake := faker.New()
		bar := progressbar.Default(int64(restaurants*(items+1)), "seeding")

		for i := 0; i < restaurants; i++ {
			rest, err := api.UpsertRestaurant(cmd.Context(), model.Restaurant{
				ID:       cuid.New(),
				Name:     fake.Company().Name(),
				IsActive: true,
			})
			if err != nil {
				return fmt.Errorf("create restaurant: %w", err)
			}
			bar.Add(1)

			for j := 0; j < items; j++ {
				category := categories[fake.IntBetween(0, len(categories)-1)]
				options := dishes[category]
				price := math.Round(fake.Float64(2, 3, 30)*100) / 100
				_, err := api.CreateMenuItem(cmd.Context(), model.MenuItem{
					RestaurantID: rest.ID,
					Name:         fake.Person().FirstName() + "'s " + options[fake.IntBetween(0, len(options)-1)],
					Description:  fake.Lorem().Sentence(8),
					Price:        price,
					Category:     category,
					IsAvailable:  true,
				})
				if err != nil {
					return fmt.Errorf("create menu item for %s: %w", rest.Name, err)
				}
				bar.Add(1)
			}
			log.Debugf("Seeded restaurant %s (%s)", rest.Name, rest.ID)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("restaurants", 5, "number of restaurants to create")
	seedCmd.Flags().Int("items", 8, "menu items per restaurant")
	rootCmd.AddCommand(seedCmd)
}
