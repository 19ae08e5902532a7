package main

import (
	"fmt"

	"github.com/pnt-cleaner/internal/resources"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) seedCmd() *cobra.Command {
	var targets []string
	cmd := &cobra.Command{
		Use:   "seed-resources",
		Short: "Copy the reference lists and catalogs from the resources directory into Redis or Meilisearch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rc, err := c.deps.LoadRules()
			if err != nil {
				return err
			}

			files := resources.NewFileSource(c.fs, c.cfg.Resources.Dir)
			set, err := resources.NewLoader(files, files, c.logger).Load(ctx, rc)
			if err != nil {
				return err
			}

			for _, target := range targets {
				lists := 0
				switch target {
				case "redis":
					client, err := c.deps.Redis(ctx)
					if err != nil {
						return err
					}
					dst := resources.NewRedisSource(client, c.cfg.Redis.Prefix, c.logger)
					for _, name := range set.ListNames() {
						list, _ := set.List(name)
						if err := dst.StoreList(ctx, list); err != nil {
							return err
						}
						lists++
					}
					for _, spec := range rc.Catalogs.All() {
						cat, _ := set.Catalog(spec.Table)
						if err := dst.StoreCatalog(ctx, spec, cat); err != nil {
							return err
						}
					}
				case "meili":
					client := c.deps.Meili()
					dst := resources.NewMeiliSource(client, c.cfg.Meilisearch.IndexPrefix, c.logger)
					for _, name := range set.CatalogNames() {
						cat, _ := set.Catalog(name)
						if err := dst.SeedCatalog(client, cat); err != nil {
							return err
						}
					}
				default:
					return fmt.Errorf("unknown seed target %q", target)
				}

				c.logger.Info("Resources seeded", zap.String("target", target))
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d lists, %d catalogs\n",
					target, lists, len(set.CatalogNames()))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&targets, "targets", []string{"redis"}, "destinations: redis, meili")
	return cmd
}
