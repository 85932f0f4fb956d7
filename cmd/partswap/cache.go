// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/partswap/internal/catalog"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local catalog lookup cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired entries from the lookup cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		cached, ok := a.catalog.(*catalog.CachedClient)
		if !ok {
			return errors.New("no cache configured: set catalog.cache_dir")
		}
		n, err := cached.Purge(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d expired entries from %s\n", n, a.cfg.Catalog.CacheDir)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
