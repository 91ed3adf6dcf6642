package cmd

import (
	"fmt"
	"strconv"

	"github.com/chettriyuvraj/storage-heap/binaryheap"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

const DEFAULTITERLIMIT = 10

func parseValues(args []string) ([]int64, error) {
	vals := make([]int64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value %q", arg)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func newPushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "push <value>...",
		Short: "Push values onto the heap",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.withHeap(func(cmd *cobra.Command, args []string) error {
			vals, err := parseValues(args)
			if err != nil {
				return err
			}
			if err := a.heap.Extend(vals...); err != nil {
				return errors.Wrap(err, "pushing")
			}
			if err := a.flush(cmd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.heap.Len())
			return nil
		}),
	}
}

func newPopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pop",
		Short: "Remove and print the maximum",
		Args:  cobra.NoArgs,
		RunE: a.withHeap(func(cmd *cobra.Command, args []string) error {
			top, ok, err := a.heap.Pop()
			if err != nil {
				return errors.Wrap(err, "popping")
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "empty")
				return nil
			}
			if err := a.flush(cmd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), top)
			return nil
		}),
	}
}

func newPeekCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "peek",
		Short: "Print the maximum without removing it",
		Args:  cobra.NoArgs,
		RunE: a.withHeap(func(cmd *cobra.Command, args []string) error {
			top, err := a.heap.Peek()
			if err != nil {
				return errors.Wrap(err, "peeking")
			}
			if top == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), *top)
			return nil
		}),
	}
}

func newLenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "len",
		Short: "Print the number of elements",
		Args:  cobra.NoArgs,
		RunE: a.withHeap(func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.heap.Len())
			return nil
		}),
	}
}

func newIterCmd(a *app) *cobra.Command {
	var limit int
	iterCmd := &cobra.Command{
		Use:   "iter",
		Short: "Print elements in storage order, the maximum first",
		Args:  cobra.NoArgs,
		RunE: a.withHeap(func(cmd *cobra.Command, args []string) error {
			elems, err := binaryheap.Take(a.heap.Iter(), limit)
			if err != nil {
				return errors.Wrap(err, "iterating")
			}
			for _, e := range elems {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		}),
	}
	iterCmd.Flags().IntVarP(&limit, "limit", "n", DEFAULTITERLIMIT, "maximum number of elements to print")
	return iterCmd
}

func newNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Print a fresh unique heap prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s-%s\n", a.cfg.Prefix, ksuid.New().String())
			return nil
		},
	}
}
