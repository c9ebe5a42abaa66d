// Package controller contains the Kubernetes controller logic for PodSweeper.
package controller

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/podsweeper/engine/pkg/board"
	"github.com/podsweeper/engine/pkg/geometry"
)

// PodNameRegex matches pod names in the format "pod-X-Y" where X and Y are integers.
var PodNameRegex = regexp.MustCompile(`^pod-(\d+)-(\d+)$`)

// HintPodNameRegex matches hint pod names in the format "hint-X-Y".
var HintPodNameRegex = regexp.MustCompile(`^hint-(\d+)-(\d+)$`)

// GameController reconciles Pod objects in the game namespace.
type GameController struct {
	client.Client
	Store     board.Store
	Namespace string
	Handlers  *GameHandlers
}

// GameControllerConfig holds configuration for the GameController.
type GameControllerConfig struct {
	Namespace string
	Store     board.Store
}

// NewGameController creates a new GameController.
func NewGameController(c client.Client, config GameControllerConfig) *GameController {
	gc := &GameController{
		Client:    c,
		Store:     config.Store,
		Namespace: config.Namespace,
	}
	gc.Handlers = NewGameHandlers(c, config.Store, config.Namespace)
	return gc
}

// Reconcile handles pod events in the game namespace.
func (r *GameController) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	// Only process pods in our namespace
	if req.Namespace != r.Namespace {
		return ctrl.Result{}, nil
	}

	// Check if this is a game pod (pod-X-Y format)
	loc, ok := ParsePodName(req.Name)
	if !ok {
		// Not a game pod, ignore
		return ctrl.Result{}, nil
	}

	// Try to get the pod
	pod := &corev1.Pod{}
	err := r.Get(ctx, req.NamespacedName, pod)

	if errors.IsNotFound(err) {
		// Pod was deleted - this is the main game action
		x, y, _ := loc.XY()
		logger.Info("pod deleted", "name", req.Name, "x", x, "y", y)
		return r.handlePodDeletion(ctx, loc)
	}

	if err != nil {
		logger.Error(err, "failed to get pod")
		return ctrl.Result{}, err
	}

	// Pod exists - check if it's being deleted (has deletion timestamp)
	if !pod.DeletionTimestamp.IsZero() {
		logger.Info("pod is being deleted", "name", req.Name)
		// Pod is terminating, we'll handle it when it's fully gone
		return ctrl.Result{}, nil
	}

	// Pod exists and is not being deleted - nothing to do
	return ctrl.Result{}, nil
}

// handlePodDeletion processes a pod deletion event (the "click") by loading
// the minefield and running a Reveal command at loc.
func (r *GameController) handlePodDeletion(ctx context.Context, loc geometry.Location) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	mf, err := r.Store.Load(ctx)
	if err != nil {
		logger.Error(err, "failed to load minefield")
		return ctrl.Result{}, err
	}

	if mf == nil {
		logger.Info("no active game, ignoring deletion")
		return ctrl.Result{}, nil
	}

	if mf.State().Tag == board.StateWin || mf.State().Tag == board.StateLoss {
		logger.Info("game already ended", "state", mf.State().Tag)
		return ctrl.Result{}, nil
	}

	return r.Handlers.HandleReveal(ctx, mf, loc)
}

// SetupWithManager sets up the controller with the Manager.
func (r *GameController) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&corev1.Pod{}).
		WithEventFilter(predicate.NewPredicateFuncs(func(object client.Object) bool {
			// Only watch pods in our namespace
			return object.GetNamespace() == r.Namespace
		})).
		Complete(r)
}

func cellPodName(x, y int) string { return fmt.Sprintf("pod-%d-%d", x, y) }
func hintPodName(x, y int) string { return fmt.Sprintf("hint-%d-%d", x, y) }

// ParsePodName extracts a location from a pod name like "pod-3-5".
// Returns the location and true if successful, or the zero location and
// false if not a game pod.
func ParsePodName(name string) (geometry.Location, bool) {
	matches := PodNameRegex.FindStringSubmatch(name)
	if matches == nil {
		return geometry.Location{}, false
	}

	x, err1 := strconv.Atoi(matches[1])
	y, err2 := strconv.Atoi(matches[2])
	if err1 != nil || err2 != nil {
		return geometry.Location{}, false
	}

	return geometry.NewLocation(x, y), true
}

// ParseHintPodName extracts a location from a hint pod name like "hint-3-5".
func ParseHintPodName(name string) (geometry.Location, bool) {
	matches := HintPodNameRegex.FindStringSubmatch(name)
	if matches == nil {
		return geometry.Location{}, false
	}

	x, err1 := strconv.Atoi(matches[1])
	y, err2 := strconv.Atoi(matches[2])
	if err1 != nil || err2 != nil {
		return geometry.Location{}, false
	}

	return geometry.NewLocation(x, y), true
}

// IsPodName checks if a name matches the game pod pattern.
func IsPodName(name string) bool {
	return PodNameRegex.MatchString(name)
}

// IsHintPodName checks if a name matches the hint pod pattern.
func IsHintPodName(name string) bool {
	return HintPodNameRegex.MatchString(name)
}

// GeneratePodName creates a pod name from a location.
func GeneratePodName(x, y int) string {
	return cellPodName(x, y)
}

// GenerateHintPodName creates a hint pod name from a location.
func GenerateHintPodName(x, y int) string {
	return hintPodName(x, y)
}
