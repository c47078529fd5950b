package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/leafdoc/internal/catalog"
	"github.com/Brownie44l1/leafdoc/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the disease catalog",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return err
	}
	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Category", "Name", "Symptoms", "Steps"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	for _, id := range c.IDs() {
		rec, _ := c.Lookup(id)
		tw.AppendRow(table.Row{id, rec.Name, len(rec.Symptoms), len(rec.Treatment)})
	}
	tw.AppendFooter(table.Row{"", "total", c.Len(), ""})
	tw.Render()
	return nil
}
