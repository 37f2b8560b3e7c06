package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nuanceur/internal/shader"
)

var swizzleCmd = &cobra.Command{
	Use:   "swizzle",
	Short: "Inspect swizzle patterns",
}

var swizzleComposeCmd = &cobra.Command{
	Use:   "compose <outer> <inner>",
	Short: "Print the single swizzle equivalent to applying outer, then inner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outer, err := shader.ParseSwizzle(args[0])
		if err != nil {
			return err
		}
		inner, err := shader.ParseSwizzle(args[1])
		if err != nil {
			return err
		}
		out, err := shader.TransformSwizzle(outer, inner)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var swizzleClassifyCmd = &cobra.Command{
	Use:   "classify <swizzle>...",
	Short: "Report length, identity and write-mask status of swizzles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			s, err := shader.ParseSwizzle(arg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), classify(s))
		}
		return nil
	},
}

var swizzleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all swizzle patterns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		masks, err := cmd.Flags().GetBool("masks")
		if err != nil {
			return err
		}
		for _, s := range shader.AllSwizzles() {
			if masks && !shader.IsMaskSwizzle(s) {
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

func init() {
	swizzleListCmd.Flags().Bool("masks", false, "only list write masks")
	swizzleCmd.AddCommand(swizzleComposeCmd, swizzleClassifyCmd, swizzleListCmd)
}

var tagColor = color.New(color.FgGreen)

func classify(s shader.Swizzle) string {
	var tags []string
	if shader.IsIdentitySwizzle(s) {
		tags = append(tags, tagColor.Sprint("identity"))
	}
	if shader.IsMaskSwizzle(s) {
		tags = append(tags, tagColor.Sprint("mask"))
	}
	line := fmt.Sprintf("%-4s len=%d", s, s.Len())
	if len(tags) > 0 {
		line += " " + strings.Join(tags, " ")
	}
	return line
}
