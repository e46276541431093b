package main

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/engine-bridge/class"
	"github.com/wippyai/engine-bridge/engine"
	"github.com/wippyai/engine-bridge/exception"
	"github.com/wippyai/engine-bridge/handle"
	"github.com/wippyai/engine-bridge/runtime"
	"github.com/wippyai/engine-bridge/task"
)

func main() {
	var (
		interactive bool
		debug       bool
		workers     int
	)

	root := &cobra.Command{
		Use:          "inspect",
		Short:        "Exercise and observe the engine bridge",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(debug)
			if interactive {
				return runInteractive(workers)
			}
			return cmd.Help()
		},
	}
	root.PersistentFlags().BoolVarP(&interactive, "interactive", "i", false, "Interactive TUI mode")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging and the contract harness")
	root.PersistentFlags().IntVar(&workers, "workers", 4, "Background task pool size")

	demo := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted bridge session",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(debug)
			return runDemo(workers)
		},
	}
	root.AddCommand(demo)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	var logger *zap.Logger
	if debug {
		logger, _ = zap.NewDevelopment()
		engine.SetDebug(true)
	} else {
		logger, _ = zap.NewProduction()
	}
	engine.SetLogger(logger)
	task.SetLogger(logger)
}

type counter struct {
	n float64
}

// defineCounter registers the demo class: new Counter(n) with add and value
// prototype methods backed by Go state.
func defineCounter(rt *runtime.Runtime) (*class.BaseClassMetadata, error) {
	md, err := rt.DefineClass(reflect.TypeOf(&counter{}), "Counter",
		class.AllocateKernel{Static: func(cc *engine.CallContext) (any, error) {
			return &counter{n: cc.Get(0).Number()}, nil
		}},
		engine.Kernel{}, engine.Kernel{}, nil)
	if err != nil {
		return nil, err
	}

	add, err := engine.NewFunctionTemplate(rt.Instance(), engine.Kernel{
		Static: func(cc *engine.CallContext) {
			c, ok := class.Internals(cc.This())
			if !ok {
				md.ThrowThisError(cc.Region())
				return
			}
			c.(*counter).n += cc.Get(0).Number()
			cc.SetReturn(cc.This())
		},
	})
	if err != nil {
		return nil, err
	}
	if err := md.AddMethod([]byte("add"), add); err != nil {
		return nil, err
	}

	value, err := engine.NewFunctionTemplate(rt.Instance(), engine.Kernel{
		Static: func(cc *engine.CallContext) {
			c, ok := class.Internals(cc.This())
			if !ok {
				md.ThrowThisError(cc.Region())
				return
			}
			cc.SetReturn(cc.Region().Number(c.(*counter).n))
		},
	})
	if err != nil {
		return nil, err
	}
	if err := md.AddMethod([]byte("value"), value); err != nil {
		return nil, err
	}

	return md, nil
}

func runDemo(workers int) error {
	log := engine.Logger()

	rt, err := runtime.New(runtime.WithWorkers(workers))
	if err != nil {
		return err
	}

	md, err := defineCounter(rt)
	if err != nil {
		return err
	}
	log.Info("class registered", zap.String("name", md.GetName()))

	// Construct an instance, call its methods, and keep it alive past the
	// scope through a persistent slot.
	slot := handle.New()
	err = rt.WithScope(func(r *engine.Region) error {
		ctor, err := md.Constructor(r)
		if err != nil {
			return err
		}
		obj, err := engine.Construct(r, ctor, r.Number(10))
		if err != nil {
			return err
		}

		add, err := engine.GetString(r, obj, []byte("add"))
		if err != nil {
			return err
		}
		if _, err := engine.Call(r, add, obj, r.Number(5)); err != nil {
			if thrown, ok := rt.Instance().TakePending(r); ok {
				return fmt.Errorf("thrown: %s", thrown.ErrorMessage())
			}
			return err
		}

		value, err := engine.GetString(r, obj, []byte("value"))
		if err != nil {
			return err
		}
		out, err := engine.Call(r, value, obj)
		if err != nil {
			return err
		}
		log.Info("counter after add", zap.Float64("value", out.Number()))

		return slot.Init(rt.Instance(), obj)
	})
	if err != nil {
		return err
	}
	log.Info("instance captured",
		zap.Int("live_refs", rt.Instance().RefCount()))

	// Schedule background work; completions land back on this goroutine when
	// the runtime drains during Close.
	for i := 0; i < 5; i++ {
		payload := float64(i)
		err := rt.Schedule(payload,
			func(p any) any {
				time.Sleep(time.Millisecond)
				return p.(float64) * p.(float64)
			},
			func(r *engine.Region, result, p any, _ *handle.Persistent) {
				log.Info("task completed",
					zap.Float64("payload", p.(float64)),
					zap.Float64("result", result.(float64)))
			},
			nil)
		if err != nil {
			return err
		}
	}

	// Demonstrate the error path: calling the constructor without new throws
	// the cached TypeError.
	err = rt.WithScope(func(r *engine.Region) error {
		ctor, err := md.Constructor(r)
		if err != nil {
			return err
		}
		if _, err := engine.Call(r, ctor, r.Undefined()); err != nil {
			if thrown, ok := rt.Instance().TakePending(r); ok && exception.IsError(thrown) {
				log.Info("expected throw", zap.String("message", thrown.ErrorMessage()))
				return nil
			}
		}
		return fmt.Errorf("constructor call without new did not throw")
	})
	if err != nil {
		return err
	}

	if err := slot.Drop(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rt.Close(ctx); err != nil {
		return err
	}
	log.Info("runtime closed")
	return nil
}
