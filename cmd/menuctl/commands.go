package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iliyamo/menu-factory/internal/export"
	"github.com/iliyamo/menu-factory/internal/model"
	"github.com/iliyamo/menu-factory/internal/service"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func instancesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "instances", Short: "List, create, delete and activate menu instances"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List instances, master first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.MenuService) error {
				list := svc.Instances(ctx)
				if viper.GetBool("json") {
					return printJSON(cmd.OutOrStdout(), list)
				}
				active := svc.ActiveInstance(ctx).ID
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ACTIVE\tID\tNAME\tDISHES")
				for _, inst := range list {
					mark := ""
					if inst.ID == active {
						mark = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", mark, inst.ID, inst.Name, len(inst.InitialDishes))
				}
				return tw.Flush()
			})
		},
	})

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an instance and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.CreateInstanceRequest{Name: args[0]}
			req.Slogan, _ = cmd.Flags().GetString("slogan")
			req.Prompt, _ = cmd.Flags().GetString("prompt")
			if path, _ := cmd.Flags().GetString("file"); path != "" {
				b, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read menu file: %w", err)
				}
				req.File = b
				req.MimeType = mimeFor(path, b)
			}
			if path, _ := cmd.Flags().GetString("seed"); path != "" {
				b, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read seed: %w", err)
				}
				seed, err := model.ParseSeed(b)
				if err != nil {
					return err
				}
				req.Seed = seed.InitialDishes
				req.Theme = seed.Theme
			} else if copyMaster, _ := cmd.Flags().GetBool("from-master"); copyMaster {
				req.Seed = model.Master().Seed()
			}
			if font, _ := cmd.Flags().GetString("font"); font != "" {
				style, _ := cmd.Flags().GetString("style")
				req.Theme = &model.Theme{Font: font, Style: style}
			}
			return withService(cmd, func(ctx context.Context, svc *service.MenuService) error {
				inst, err := svc.CreateInstance(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d dishes), now active\n", inst.ID, len(inst.InitialDishes))
				return nil
			})
		},
	}
	create.Flags().String("slogan", "", "tagline shown under the name")
	create.Flags().String("prompt", "", "describe the restaurant and let the AI draft the menu")
	create.Flags().String("file", "", "menu file (image, PDF or text) for the AI to read")
	create.Flags().String("seed", "", "seed YAML file with the initial dishes")
	create.Flags().Bool("from-master", false, "start from a copy of the master dishes")
	create.Flags().String("font", "", "theme font (font-lora, font-inter, font-serif, font-sans)")
	create.Flags().String("style", "classic", "theme style (classic, modern, fresh)")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete an instance and its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.MenuService) error {
				if err := svc.DeleteInstance(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use ID",
		Short: "Make an instance the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.MenuService) error {
				inst, err := svc.LoadInstance(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "active instance: %s (%s)\n", inst.ID, inst.Name)
				return nil
			})
		},
	})
	return cmd
}

func dishesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "dishes", Short: "Inspect the dishes of the active instance"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List dishes in stored order",
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := model.LangES
			if s, _ := cmd.Flags().GetString("lang"); s != "" {
				l, ok := model.ParseLanguage(s)
				if !ok {
					return fmt.Errorf("unknown language %q", s)
				}
				lang = l
			}
			return withService(cmd, func(ctx context.Context, svc *service.MenuService) error {
				dishes := svc.Dishes(ctx)
				if viper.GetBool("json") {
					return printJSON(cmd.OutOrStdout(), dishes)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTYPE\tPRICE\tACTIVE\tROLE\tRATION")
				for _, d := range dishes {
					role := string(d.Role)
					if role == "" {
						role = "-"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\t%t\n",
						d.ID, d.Name(lang), d.Type, d.Price.StringFixed(2), d.Active, role, d.Ration)
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().String("lang", "ES", "language of the names")
	cmd.AddCommand(list)
	return cmd
}

func priceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "price", Short: "Read or set the daily menu price"}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the menu price of the active instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.MenuService) error {
				fmt.Fprintln(cmd.OutOrStdout(), svc.MenuPrice(ctx).StringFixed(2))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set PRICE",
		Short: "Set the menu price of the active instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid price %q", args[0])
			}
			return withService(cmd, func(ctx context.Context, svc *service.MenuService) error {
				if err := svc.SetMenuPrice(ctx, v); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "menu price set to %s\n", v.StringFixed(2))
				return nil
			})
		},
	})
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active menu to a file, stdout or s3://bucket/key",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			region, _ := cmd.Flags().GetString("region")
			return withService(cmd, func(ctx context.Context, svc *service.MenuService) error {
				snap := svc.Snapshot(ctx)
				if out == "-" {
					return export.Encode(cmd.OutOrStdout(), export.NewDocument(snap, timeNow()), export.FormatJSON)
				}
				if err := export.Write(ctx, snap, out, region); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %s (%d dishes) to %s\n", snap.Instance.ID, len(snap.Dishes), out)
				return nil
			})
		},
	}
	cmd.Flags().String("out", "-", "destination path, - for stdout, or s3://bucket/key")
	cmd.Flags().String("region", "", "AWS region for S3 destinations")
	return cmd
}
