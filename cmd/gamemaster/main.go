// Package main is the entry point for the PodSweeper Gamemaster controller.
// The Gamemaster is responsible for:
// - Managing the game grid (spawning/deleting pods)
// - Tracking game state (mines, revealed cells, marks)
// - Handling game logic (flood-fill propagation, victory/defeat detection)
//
// No admission webhook is set up.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/podsweeper/engine/internal/controller"
	"github.com/podsweeper/engine/pkg/board"
	"github.com/podsweeper/engine/pkg/generator"
	"github.com/podsweeper/engine/pkg/spawner"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
}

func main() {
	var metricsAddr string
	var probeAddr string
	var namespace string
	var enableLeaderElection bool
	var newGame bool
	var width, height, mines int

	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.StringVar(&namespace, "namespace", board.DefaultNamespace, "The namespace to watch for game pods.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	flag.BoolVar(&newGame, "new-game", false, "Deal a fresh minefield and grid of pods before starting to watch.")
	flag.IntVar(&width, "width", 9, "Minefield width, used with -new-game.")
	flag.IntVar(&height, "height", 9, "Minefield height, used with -new-game.")
	flag.IntVar(&mines, "mines", 10, "Mine count, used with -new-game.")

	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: metricsAddr},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "podsweeper-gamemaster",
	})
	if err != nil {
		setupLog.Error(err, "unable to create manager")
		os.Exit(1)
	}

	// Game state store, persisted in a Kubernetes Secret.
	store := board.NewSecretStore(mgr.GetClient(),
		board.WithNamespace(namespace),
	)

	if newGame {
		if err := dealNewGame(mgr.GetClient(), store, namespace, width, height, mines); err != nil {
			setupLog.Error(err, "unable to deal new game")
			os.Exit(1)
		}
	}

	gameController := controller.NewGameController(mgr.GetClient(), controller.GameControllerConfig{
		Namespace: namespace,
		Store:     store,
	})

	if err := gameController.SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "GameController")
		os.Exit(1)
	}

	// TODO: Set up admission webhook (for levels 5+)

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting gamemaster",
		"namespace", namespace,
		"probeAddr", probeAddr,
	)

	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

// dealNewGame generates a fresh minefield, persists it, and spawns its grid
// of cell pods. Mine placement itself is deferred to the first Reveal
// command (board.New keeps the board mine-free until then, guaranteeing the
// player's first click is always safe); this only fixes the dimensions and
// wires in the generator that first click will use.
func dealNewGame(c client.Client, store board.Store, namespace string, width, height, mines int) error {
	ctx := context.Background()

	gen := generator.NewImprovedGenerator(rand.NewSource(time.Now().UnixNano()))
	mf := board.New(width, height, mines, gen)

	if err := store.Save(ctx, mf); err != nil {
		return err
	}

	gridSpawner := spawner.NewGridSpawner(c, spawner.GridSpawnerConfig{
		Namespace: namespace,
	})

	result, err := gridSpawner.SpawnGrid(ctx, mf)
	if err != nil {
		return err
	}

	setupLog.Info("dealt new game",
		"width", width, "height", height, "mines", mines,
		"spawned", result.CreatedPods, "failed", result.FailedPods)

	return nil
}
