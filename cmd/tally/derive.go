package main

import (
	"fmt"
	"os"

	"github.com/aretw0/tally/pkg/derive"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/spf13/cobra"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Compute derived account addresses offline",
	Long: `Computes the deterministic address of a tally account from its logical
identity, without talking to a server. Useful for pre-computing where a
list, item, node or token account will live.`,
}

func mustAddr(cmd *cobra.Command, flag string) domain.Address {
	raw, _ := cmd.Flags().GetString(flag)
	addr, err := domain.ParseAddress(raw)
	if err != nil {
		fmt.Printf("Invalid --%s: %v\n", flag, err)
		os.Exit(1)
	}
	return addr
}

func printDerived(addr domain.Address, nonce uint8, err error) {
	if err != nil {
		fmt.Printf("Derivation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("address: %s\nnonce:   %d\n", addr, nonce)
}

var deriveListCmd = &cobra.Command{
	Use:   "list",
	Short: "Derive a todo list address from (owner, name)",
	Run: func(cmd *cobra.Command, args []string) {
		owner := mustAddr(cmd, "owner")
		name, _ := cmd.Flags().GetString("name")
		printDerived(derive.Derive(derive.TagTodoList, owner.Bytes(), derive.NameSeed(name)))
	},
}

var deriveItemCmd = &cobra.Command{
	Use:   "item",
	Short: "Derive a list item address from (list owner, creator, name)",
	Run: func(cmd *cobra.Command, args []string) {
		owner := mustAddr(cmd, "owner")
		user := mustAddr(cmd, "user")
		name, _ := cmd.Flags().GetString("name")
		printDerived(derive.Derive(derive.TagTodoListItem,
			owner.Bytes(), user.Bytes(), derive.NameSeed(name)))
	},
}

var deriveNodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Derive a tree node address from (owner, mint)",
	Run: func(cmd *cobra.Command, args []string) {
		owner := mustAddr(cmd, "owner")
		mint := mustAddr(cmd, "mint")
		printDerived(derive.Derive(derive.TagTreeNode, owner.Bytes(), mint.Bytes()))
	},
}

var deriveTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Derive a token account address from (owner, mint)",
	Run: func(cmd *cobra.Command, args []string) {
		owner := mustAddr(cmd, "owner")
		mint := mustAddr(cmd, "mint")
		printDerived(derive.Derive(derive.TagTokenAccount, owner.Bytes(), mint.Bytes()))
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)

	for _, sub := range []*cobra.Command{deriveListCmd, deriveItemCmd, deriveNodeCmd, deriveTokenCmd} {
		sub.Flags().String("owner", "", "Owner address (hex)")
		deriveCmd.AddCommand(sub)
	}
	deriveListCmd.Flags().String("name", "", "List name")
	deriveItemCmd.Flags().String("user", "", "Item creator address (hex)")
	deriveItemCmd.Flags().String("name", "", "Item name")
	deriveNodeCmd.Flags().String("mint", "", "Mint address (hex)")
	deriveTokenCmd.Flags().String("mint", "", "Mint address (hex)")
}
