package cmd

import (
	"github.com/fragrancepalette/backend/internal/bootstrap/data"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate the schema and seed fragrance families",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, router, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer router.Close()
		if err := data.InitData(database); err != nil {
			return err
		}
		log.Info("seeding completed")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(SeedCmd)
}
