package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"

	"github.com/chettriyuvraj/storage-heap/binaryheap"
	"github.com/chettriyuvraj/storage-heap/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read PUSH, POP, PEEK, LEN, ITER and FLUSH from stdin",
		Long: `Reads one operation per line. PUSH and ITER read their argument from the next line.
The heap is flushed on FLUSH and when input ends.`,
		Args: cobra.NoArgs,
		RunE: a.withHeap(func(cmd *cobra.Command, args []string) error {
			if err := a.repl(cmd); err != nil {
				return err
			}
			return a.flush(cmd)
		}),
	}
}

func (a *app) repl(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	/* Reads the argument line of PUSH and ITER */
	readInt := func(op string) (int64, error) {
		if !scanner.Scan() {
			return 0, errors.Errorf("no value for %s", op)
		}
		v, err := strconv.ParseInt(string(bytes.TrimSpace(scanner.Bytes())), 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "value for %s", op)
		}
		return v, nil
	}

	for scanner.Scan() {
		op := bytes.TrimSpace(scanner.Bytes())
		switch {
		case bytes.Equal(op, []byte("PUSH")):
			fmt.Fprintln(out, "Enter value to PUSH!")
			v, err := readInt("PUSH")
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if err := a.heap.Push(v); err != nil {
				return errors.Wrap(err, "pushing")
			}
			fmt.Fprintln(out, "Success!")

		case bytes.Equal(op, []byte("POP")):
			top, ok, err := a.heap.Pop()
			if err != nil {
				return errors.Wrap(err, "popping")
			}
			if !ok {
				fmt.Fprintln(out, "Heap is empty")
				continue
			}
			fmt.Fprintf(out, "Popped %d\n", top)

		case bytes.Equal(op, []byte("PEEK")):
			top, err := a.heap.Peek()
			if err != nil {
				return errors.Wrap(err, "peeking")
			}
			if top == nil {
				fmt.Fprintln(out, "Heap is empty")
				continue
			}
			fmt.Fprintf(out, "Max is %d\n", *top)

		case bytes.Equal(op, []byte("LEN")):
			fmt.Fprintf(out, "Len is %d\n", a.heap.Len())

		case bytes.Equal(op, []byte("ITER")):
			fmt.Fprintln(out, "Enter number of elements to ITER!")
			n, err := readInt("ITER")
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			elems, err := binaryheap.Take(a.heap.Iter(), int(n))
			if err != nil {
				return errors.Wrap(err, "iterating")
			}
			fmt.Fprintln(out, elems)

		case bytes.Equal(op, []byte("FLUSH")):
			if err := a.flush(cmd); err != nil {
				return err
			}
			fmt.Fprintln(out, "Flushed!")

		case len(op) == 0:

		default:
			logger.For(cmd.Context()).WithField("op", string(op)).Debug("unknown repl op")
			fmt.Fprintln(out, "Invalid operation!")
		}
	}

	return scanner.Err()
}
