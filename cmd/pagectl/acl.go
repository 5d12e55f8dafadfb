package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagekit-db/pagekit/store/acl"
)

func init() {
	aclCmd := &cobra.Command{
		Use:   "acl",
		Short: "Manage the store's access control list",
	}
	aclCmd.AddCommand(newACLListCmd(), newACLAddCmd(), newACLRemoveCmd())
	rootCmd.AddCommand(aclCmd)
}

func newACLListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <store>",
		Short: "List the principals allowed to use the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runACLList(args[0])
		},
	}
}

func newACLAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <store> <principal>...",
		Short: "Grant principals access to the store",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runACLMutate(args[0], args[1:], true)
		},
	}
}

func newACLRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <store> <principal>...",
		Short: "Revoke principals' access to the store",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runACLMutate(args[0], args[1:], false)
		},
	}
}

func runACLList(path string) error {
	p, mgr, err := openStore(path)
	if err != nil {
		return err
	}
	defer p.Close()

	list, err := acl.Load(mgr)
	if err != nil {
		return fmt.Errorf("failed to load access list: %w", err)
	}

	principals := list.Principals()
	if jsonOut {
		return printJSON(principals)
	}
	if len(principals) == 0 {
		printInfo("No principals registered.\n")
		return nil
	}
	for _, principal := range principals {
		printInfo("%s\n", principal)
	}
	return nil
}

func runACLMutate(path string, principals []string, add bool) error {
	p, mgr, err := openStore(path)
	if err != nil {
		return err
	}
	defer p.Close()

	list, err := acl.Load(mgr)
	if err != nil {
		return fmt.Errorf("failed to load access list: %w", err)
	}

	for _, principal := range principals {
		if add {
			err = list.Add(acl.Principal(principal))
		} else {
			err = list.Remove(acl.Principal(principal))
		}
		if err != nil {
			return fmt.Errorf("failed to update access list: %w", err)
		}
		printVerbose("Updated principal: %s\n", principal)
	}
	if err := p.Sync(); err != nil {
		return fmt.Errorf("failed to sync store: %w", err)
	}
	printInfo("Access list now has %d principal(s).\n", len(list.Principals()))
	return nil
}
