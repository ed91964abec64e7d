// Package main contains the ckvopt CLI, a spf13/cobra tool mirroring the
// teacher's cmd/smf: one subcommand per engine operation, each a thin
// wrapper over internal/configurable and internal/registry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ckv/internal/ckverrors"
	"ckv/internal/configurable"
	"ckv/internal/ctxopt"
	"ckv/internal/options"
	"ckv/internal/plugins"
	"ckv/internal/registry"
)

func newRegistry() *registry.Registry {
	reg := registry.New()
	plugins.RegisterFilterPolicies(reg)
	plugins.RegisterMergeOperators(reg)
	plugins.RegisterMetadataStores(reg)
	return reg
}

func newContext() ctxopt.Context {
	ctx := ctxopt.Default()
	ctx.Registry = newRegistry()
	return ctx
}

// loadPair configures a DBOptions/ColumnFamilyOptions pair from the same
// combined options string, each side tolerating the other's keys as
// unknown (spec §7's two-phase DB/CF parse pattern: a single options
// string routes to whichever of the two tables recognizes each key).
func loadPair(text string) (*configurable.Configurable, *configurable.Configurable, error) {
	ctx := newContext().WithIgnoreUnknownOptions(true)
	dbCfg, _ := options.NewDBOptions()
	cfCfg, _ := options.NewColumnFamilyOptions()
	if err := dbCfg.ConfigureFromString(ctx, text); err != nil {
		return nil, nil, err
	}
	if err := cfCfg.ConfigureFromString(ctx, text); err != nil {
		return nil, nil, err
	}
	return dbCfg, cfCfg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "ckvopt",
		Short: "Configuration engine inspection tool",
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(serializeCmd())
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(registryCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if ckverrors.Is(err, ckverrors.NotFound) {
		return 2
	}
	if ckverrors.Is(err, ckverrors.IOError) {
		return 3
	}
	return 1
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ckverrors.IOErrorf(err, "ckvopt: read %q", path)
	}
	return string(data), nil
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a DBOptions+ColumnFamilyOptions options string and print the resulting tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			text, err := readFile(args[0])
			if err != nil {
				return err
			}
			dbCfg, cfCfg, err := loadPair(text)
			if err != nil {
				return err
			}
			ctx := newContext()
			dbStr, err := dbCfg.GetOptionString(ctx)
			if err != nil {
				return err
			}
			cfStr, err := cfCfg.GetOptionString(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("db_options: %s\n", dbStr)
			fmt.Printf("cf_options: %s\n", cfStr)
			return nil
		},
	}
}

func serializeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serialize <file>",
		Short: "Round-trip: parse then GetOptionString",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			text, err := readFile(args[0])
			if err != nil {
				return err
			}
			dbCfg, cfCfg, err := loadPair(text)
			if err != nil {
				return err
			}
			ctx := newContext()
			dbStr, err := dbCfg.GetOptionString(ctx)
			if err != nil {
				return err
			}
			cfStr, err := cfCfg.GetOptionString(ctx)
			if err != nil {
				return err
			}
			fmt.Println(dbStr + ";" + cfStr)
			return nil
		},
	}
}

func matchCmd() *cobra.Command {
	var sanity string
	cmd := &cobra.Command{
		Use:   "match <a> <b>",
		Short: "Match two options strings, reporting the mismatch path on failure",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := newContext()
			switch sanity {
			case "loose":
				ctx.SanityLevel = ctxopt.SanityLooselyCompatible
			case "exact", "":
				ctx.SanityLevel = ctxopt.SanityExactMatch
			default:
				return ckverrors.InvalidArg("unknown --sanity value %q", sanity)
			}

			aDB, aCF, err := loadPair(args[0])
			if err != nil {
				return err
			}
			bDB, bCF, err := loadPair(args[1])
			if err != nil {
				return err
			}

			equal, mismatch, err := aDB.Matches(ctx, bDB)
			if err != nil {
				return err
			}
			if equal {
				equal, mismatch, err = aCF.Matches(ctx, bCF)
				if err != nil {
					return err
				}
			}
			if equal {
				fmt.Println("match")
				return nil
			}
			fmt.Printf("mismatch: %s\n", mismatch)
			os.Exit(1)
			return nil
		},
	}
	cmd.Flags().StringVar(&sanity, "sanity", "exact", "Sanity level: loose or exact")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "PrepareOptions then ValidateOptions, surfacing the engine's Status kind as the exit code class",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			text, err := readFile(args[0])
			if err != nil {
				return err
			}
			ctx := newContext()
			dbCfg, _ := options.NewDBOptions()
			cfCfg, _ := options.NewColumnFamilyOptions()
			if err := dbCfg.ConfigureFromString(ctx.WithoutPrepare(), text); err != nil {
				return err
			}
			if err := cfCfg.ConfigureFromString(ctx.WithoutPrepare(), text); err != nil {
				return err
			}
			if err := dbCfg.PrepareOptions(ctx); err != nil {
				return err
			}
			if err := cfCfg.PrepareOptions(ctx); err != nil {
				return err
			}
			if err := dbCfg.ValidateOptions(ctx); err != nil {
				return err
			}
			if err := cfCfg.ValidateOptions(ctx); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
}

func registryCmd() *cobra.Command {
	var typeTag string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Enumerate registered factory ids",
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered ids for --type",
		RunE: func(_ *cobra.Command, _ []string) error {
			tag, err := resolveTypeTag(typeTag)
			if err != nil {
				return err
			}
			reg := newRegistry()
			for _, id := range reg.IDs(tag) {
				fmt.Println(id)
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&typeTag, "type", "", "filterpolicy|mergeoperator|metadatastore")
	cmd.AddCommand(listCmd)
	return cmd
}

func resolveTypeTag(typeTag string) (string, error) {
	switch typeTag {
	case "filterpolicy":
		return plugins.FilterPolicyTypeTag, nil
	case "mergeoperator":
		return plugins.MergeOperatorTypeTag, nil
	case "metadatastore":
		return plugins.MetadataStoreTypeTag, nil
	default:
		return "", ckverrors.InvalidArg("unknown --type value %q", typeTag)
	}
}
