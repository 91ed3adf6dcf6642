package cmd

import (
	"os"

	"github.com/chettriyuvraj/storage-heap/binaryheap"
	"github.com/chettriyuvraj/storage-heap/config"
	"github.com/chettriyuvraj/storage-heap/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

/* State shared by the subcommands of one invocation */
type app struct {
	configFile string
	flags      config.Config
	cfg        config.Config
	heap       *binaryheap.Heap[int64]
	close      func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "heapctl",
		Short: "Push to and pop from a max-heap kept in a key-value store",
		Long: `heapctl keeps a max-heap of integers in a key-value store, one cell per element.
Only the cells on one root-to-leaf path are loaded for each push or pop.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVarP(&a.flags.Store, "store", "s", "", "store backend: memory, wal, leveldb or redis")
	rootCmd.PersistentFlags().StringVarP(&a.flags.Dir, "dir", "d", "", "data directory for the wal and leveldb stores")
	rootCmd.PersistentFlags().StringVarP(&a.flags.Prefix, "prefix", "p", "", "key prefix naming the heap")
	rootCmd.PersistentFlags().IntVar(&a.flags.CacheSize, "cache-size", 0, "decoded cells kept in memory")
	rootCmd.PersistentFlags().StringVar(&a.flags.LogLevel, "log-level", "", "log level")

	rootCmd.AddCommand(
		newPushCmd(a),
		newPopCmd(a),
		newPeekCmd(a),
		newLenCmd(a),
		newIterCmd(a),
		newReplCmd(a),
		newNewCmd(a),
	)

	return rootCmd
}

/* Flags set on the command line win over the config file and environment */
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store = a.flags.Store
	}
	if flags.Changed("dir") {
		cfg.Dir = a.flags.Dir
	}
	if flags.Changed("prefix") {
		cfg.Prefix = a.flags.Prefix
	}
	if flags.Changed("cache-size") {
		cfg.CacheSize = a.flags.CacheSize
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return errors.Wrapf(err, "log level %q", cfg.LogLevel)
	}
	a.cfg = cfg
	return nil
}

/* Loads config and opens the heap, closing it when the command returns */
func (a *app) withHeap(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := a.loadConfig(cmd); err != nil {
			return err
		}

		a.heap, a.close, err = openHeap(a.cfg)
		if err != nil {
			return errors.Wrapf(err, "opening %s heap %q", a.cfg.Store, a.cfg.Prefix)
		}
		defer func() {
			if cerr := a.close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "closing store")
			}
		}()

		ctx := logger.NewContextWithFields(cmd.Context(), logrus.Fields{"store": a.cfg.Store, "prefix": a.cfg.Prefix})
		cmd.SetContext(ctx)
		logger.For(ctx).WithField("len", a.heap.Len()).Debug("opened heap")

		return run(cmd, args)
	}
}

func (a *app) flush(cmd *cobra.Command) error {
	if err := a.heap.Flush(); err != nil {
		return errors.Wrap(err, "flushing heap")
	}
	logger.For(cmd.Context()).WithField("len", a.heap.Len()).Debug("flushed heap")
	return nil
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
