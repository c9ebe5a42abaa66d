package controller

import (
	"context"
	"fmt"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/podsweeper/engine/pkg/board"
	"github.com/podsweeper/engine/pkg/geometry"
)

const (
	// HintAgentImage is the container image for hint pods.
	// This should be configurable in production.
	HintAgentImage = "ghcr.io/podsweeper/engine-hint-agent:latest"

	// ExplosionImage is the container image for the explosion pod.
	ExplosionImage = "busybox:latest"

	// VictoryImage is the container image for the victory pod.
	VictoryImage = "busybox:latest"

	// LabelApp is the app label for game pods.
	LabelApp = "app.kubernetes.io/name"

	// LabelComponent is the component label.
	LabelComponent = "app.kubernetes.io/component"

	// LabelCoordX is the X coordinate label.
	LabelCoordX = "podsweeper.io/x"

	// LabelCoordY is the Y coordinate label.
	LabelCoordY = "podsweeper.io/y"

	// AnnotationHint is the annotation storing the hint value.
	AnnotationHint = "podsweeper.io/hint"

	// AnnotationPort is the annotation storing the hint port (for Level 7).
	AnnotationPort = "podsweeper.io/port"
)

// GameHandlers turns Minefield.Execute results into pod mutations. Deleting
// a cell pod is the only player input this binding exposes — there is no
// pod-shaped way to flag a cell, so Mark/Unmark/ToggleMark are reachable
// only by calling pkg/board's Minefield.Execute directly, not through this
// Kubernetes projection.
type GameHandlers struct {
	client    client.Client
	store     board.Store
	namespace string
}

// NewGameHandlers creates a new GameHandlers instance.
func NewGameHandlers(c client.Client, store board.Store, namespace string) *GameHandlers {
	return &GameHandlers{
		client:    c,
		store:     store,
		namespace: namespace,
	}
}

// HandleReveal applies a Reveal command at loc and reconciles pods against
// every cell the flood-fill touched, then dispatches on the resulting
// lifecycle state.
func (h *GameHandlers) HandleReveal(ctx context.Context, mf *board.Minefield, loc geometry.Location) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	result := mf.Execute(board.Command{Location: loc, Action: board.Reveal})
	if !result.Ok {
		logger.Info("reveal rejected, cell already settled", "loc", loc)
		return ctrl.Result{}, nil
	}

	logger.Info("flood reveal complete", "loc", loc, "updated", len(result.Updated))

	for _, u := range result.Updated {
		if err := h.deletePod(ctx, u); err != nil {
			logger.Error(err, "failed to delete pod during reveal", "loc", u)
			continue
		}

		fs, ok := mf.Fog(u)
		if !ok {
			continue
		}
		if adj, revealed := fs.IsRevealed(); revealed && adj > 0 {
			if err := h.spawnHintPod(ctx, u, adj); err != nil {
				logger.Error(err, "failed to spawn hint pod", "loc", u)
			}
		}
	}

	switch mf.State().Tag {
	case board.StateLoss:
		return h.handleLoss(ctx, mf, loc)
	case board.StateWin:
		return h.handleVictory(ctx, mf)
	}

	if err := h.store.Save(ctx, mf); err != nil {
		logger.Error(err, "failed to save minefield")
		return ctrl.Result{}, err
	}
	return ctrl.Result{}, nil
}

// handleLoss processes a mine explosion: wipes the grid and spawns the
// explosion pod at the triggering location.
func (h *GameHandlers) handleLoss(ctx context.Context, mf *board.Minefield, loc geometry.Location) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	mf.RevealAll()
	if err := h.store.Save(ctx, mf); err != nil {
		logger.Error(err, "failed to save minefield after mine hit")
		return ctrl.Result{}, err
	}

	if err := h.wipeGamePods(ctx); err != nil {
		logger.Error(err, "failed to wipe game pods")
		return ctrl.Result{}, err
	}

	if err := h.spawnExplosionPod(ctx, loc); err != nil {
		logger.Error(err, "failed to spawn explosion pod")
		return ctrl.Result{}, err
	}

	logger.Info("game over - mine hit", "loc", loc)
	return ctrl.Result{}, nil
}

// handleVictory processes a victory condition.
func (h *GameHandlers) handleVictory(ctx context.Context, mf *board.Minefield) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	if err := h.store.Save(ctx, mf); err != nil {
		logger.Error(err, "failed to save minefield after victory")
		return ctrl.Result{}, err
	}

	if err := h.spawnVictoryPod(ctx, mf); err != nil {
		logger.Error(err, "failed to spawn victory pod")
		return ctrl.Result{}, err
	}

	logger.Info("victory!", "duration", mf.State().Duration)
	return ctrl.Result{}, nil
}

// spawnHintPod creates a hint pod at the given location.
func (h *GameHandlers) spawnHintPod(ctx context.Context, loc geometry.Location, hintValue int) error {
	x, y, _ := loc.XY()
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      hintPodName(x, y),
			Namespace: h.namespace,
			Labels: map[string]string{
				LabelApp:       "podsweeper",
				LabelComponent: "hint",
				LabelCoordX:    strconv.Itoa(x),
				LabelCoordY:    strconv.Itoa(y),
			},
			Annotations: map[string]string{
				AnnotationHint: strconv.Itoa(hintValue),
				AnnotationPort: "8080",
			},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{
				{
					Name:  "hint",
					Image: HintAgentImage,
					Env: []corev1.EnvVar{
						{Name: "HINT_VALUE", Value: strconv.Itoa(hintValue)},
						{Name: "POD_X", Value: strconv.Itoa(x)},
						{Name: "POD_Y", Value: strconv.Itoa(y)},
						{Name: "PORT", Value: "8080"},
					},
					Ports: []corev1.ContainerPort{
						{ContainerPort: 8080, Protocol: corev1.ProtocolTCP},
					},
				},
			},
		},
	}

	return h.client.Create(ctx, pod)
}

// spawnExplosionPod creates the explosion pod after a mine is hit.
func (h *GameHandlers) spawnExplosionPod(ctx context.Context, loc geometry.Location) error {
	x, y, _ := loc.XY()
	explosionASCII := `
    _ ._  _ , _ ._
  (_ ' ( \` + "`" + `)_  .__)
( (  (    )   \` + "`" + `) ) _)
(__ (_   (_ . _) _) ,__)
    \` + "`" + `~~\` + "`" + `\ ' . /\` + "`" + `~~\` + "`" + `
         ;   ;
         /   \
_________/_ __ \_________

    💥 BOOM! 💥

  You hit a mine at (%d, %d)!

     GAME OVER
`
	message := fmt.Sprintf(explosionASCII, x, y)

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "explosion",
			Namespace: h.namespace,
			Labels: map[string]string{
				LabelApp:       "podsweeper",
				LabelComponent: "explosion",
			},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{
				{
					Name:    "explosion",
					Image:   ExplosionImage,
					Command: []string{"sh", "-c", fmt.Sprintf("echo '%s' && sleep infinity", message)},
				},
			},
		},
	}

	return h.client.Create(ctx, pod)
}

// spawnVictoryPod creates the victory pod after winning.
func (h *GameHandlers) spawnVictoryPod(ctx context.Context, mf *board.Minefield) error {
	victoryASCII := `
    ___________
   '._==_==_=_.'
   .-\:      /-.
  | (|:.     |) |
   '-|:.     |-'
     \::.    /
      '::. .'
        ) (
      _.' '._
     \` + "`" + `"""""""\` + "`" + `

  🎉 VICTORY! 🎉

  Duration: %s
  Mines: %d

  Congratulations!
`
	message := fmt.Sprintf(victoryASCII, mf.State().Duration, mf.MineCount())

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "victory",
			Namespace: h.namespace,
			Labels: map[string]string{
				LabelApp:       "podsweeper",
				LabelComponent: "victory",
			},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{
				{
					Name:    "victory",
					Image:   VictoryImage,
					Command: []string{"sh", "-c", fmt.Sprintf("echo '%s' && sleep infinity", message)},
				},
			},
		},
	}

	return h.client.Create(ctx, pod)
}

// deletePod deletes the cell pod and any hint pod at the given location; a
// pod that does not exist is not an error.
func (h *GameHandlers) deletePod(ctx context.Context, loc geometry.Location) error {
	x, y, _ := loc.XY()
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cellPodName(x, y),
			Namespace: h.namespace,
		},
	}
	if err := client.IgnoreNotFound(h.client.Delete(ctx, pod)); err != nil {
		return err
	}

	hint := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      hintPodName(x, y),
			Namespace: h.namespace,
		},
	}
	return client.IgnoreNotFound(h.client.Delete(ctx, hint))
}

// wipeGamePods deletes all game pods (pod-X-Y and hint-X-Y) from the namespace.
func (h *GameHandlers) wipeGamePods(ctx context.Context) error {
	podList := &corev1.PodList{}
	if err := h.client.List(ctx, podList, client.InNamespace(h.namespace)); err != nil {
		return err
	}

	for _, pod := range podList.Items {
		if IsPodName(pod.Name) || IsHintPodName(pod.Name) {
			if err := h.client.Delete(ctx, &pod); err != nil {
				log.FromContext(ctx).Error(err, "failed to delete pod", "name", pod.Name)
			}
		}
	}

	return nil
}
