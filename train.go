package charlstm

import (
	"errors"
	"fmt"
	"log"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/essentials"
)

// Default training hyper-parameters.
const (
	DefaultEpochs     = 10
	DefaultNumSeqs    = 10
	DefaultNumSteps   = 50
	DefaultStepSize   = 0.001
	DefaultClipNorm   = 5
	DefaultValidation = 0.1
	DefaultPrintEvery = 10
)

var ErrNoBatches = errors.New("not enough data for a single batch")

// Status describes the training progress at a reporting
// interval.
type Status struct {
	Epoch     int
	Step      int
	TrainLoss float64

	// ValLoss is only meaningful if HasValidation is set.
	ValLoss       float64
	HasValidation bool
}

// History records every Status reported by a training run.
type History struct {
	Statuses []Status
	Steps    int
}

// A Trainer trains a Network with clipped Adam updates.
type Trainer struct {
	Net        *Network
	Train      BatchSource
	Validation BatchSource

	StepSize float64
	ClipNorm float64

	// Epochs is the number of passes over the training
	// data. If it is 0, training runs until it is stopped.
	Epochs int

	// PrintEvery is the number of steps between status
	// reports.
	PrintEvery int

	// Transformer processes the clipped gradient before it
	// is applied. It defaults to Adam.
	Transformer anysgd.Transformer

	// StatusFunc, if non-nil, is called with every status
	// report.
	StatusFunc func(s Status)
}

// Run trains the network until every epoch is done or the
// done channel is closed.
// Closing done stops training after the current batch.
func (t *Trainer) Run(done <-chan struct{}) (*History, error) {
	if v, ok := t.Train.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, essentials.AddCtx("train", err)
		}
	}
	if t.Train.Len() == 0 {
		return nil, essentials.AddCtx("train", ErrNoBatches)
	}
	if t.Transformer == nil {
		t.Transformer = &anysgd.Adam{}
	}
	printEvery := t.PrintEvery
	if printEvery < 1 {
		printEvery = DefaultPrintEvery
	}

	t.Net.SetDropout(true)
	defer t.Net.SetDropout(false)

	history := &History{}
	params := t.Net.Parameters()
	for epoch := 0; t.Epochs <= 0 || epoch < t.Epochs; epoch++ {
		iter := t.Train.Epoch()
		var state anyrnn.State
		for {
			if isDone(done) {
				return history, nil
			}
			batch, ok := iter.Next()
			if !ok {
				break
			}
			if state == nil || !t.Train.Stateful() {
				state = t.Net.Start(batch.NumSeqs())
			}

			pass := t.Net.Forward(state, batch)
			loss := pass.Loss(batch.Targets)
			if err := checkFinite(loss); err != nil {
				return history, essentials.AddCtx(fmt.Sprintf("train step %d",
					history.Steps), err)
			}
			grad := anydiff.NewGrad(params...)
			pass.Backward(batch.Targets, grad)
			ClipGradNorm(grad, t.ClipNorm)
			t.apply(grad)

			state = pass.State()
			history.Steps++

			if history.Steps%printEvery == 0 {
				status := Status{Epoch: epoch, Step: history.Steps, TrainLoss: loss}
				if t.Validation != nil {
					valLoss, err := t.validate()
					if err == nil {
						status.ValLoss = valLoss
						status.HasValidation = true
					} else if err != ErrNoBatches {
						return history, err
					}
				}
				t.report(status)
				history.Statuses = append(history.Statuses, status)
			}
		}
	}
	return history, nil
}

func (t *Trainer) apply(grad anydiff.Grad) {
	grad = t.Transformer.Transform(grad)
	for variable, vec := range grad {
		vec.Scale(vec.Creator().MakeNumeric(-t.StepSize))
		variable.Vector.Add(vec)
	}
}

func (t *Trainer) validate() (float64, error) {
	t.Net.SetDropout(false)
	defer t.Net.SetDropout(true)
	return t.Net.MeanLoss(t.Validation)
}

func (t *Trainer) report(s Status) {
	if s.HasValidation {
		log.Printf("epoch %d step %d: train_loss=%f val_loss=%f", s.Epoch, s.Step,
			s.TrainLoss, s.ValLoss)
	} else {
		log.Printf("epoch %d step %d: train_loss=%f", s.Epoch, s.Step, s.TrainLoss)
	}
	if t.StatusFunc != nil {
		t.StatusFunc(s)
	}
}

// MeanLoss computes the average loss over one epoch of
// batches without updating the network.
//
// The hidden state starts at zero and, for stateful
// sources, is carried between batches.
func (n *Network) MeanLoss(src BatchSource) (float64, error) {
	iter := src.Epoch()
	var state anyrnn.State
	var total float64
	var count int
	for {
		batch, ok := iter.Next()
		if !ok {
			break
		}
		if state == nil || !src.Stateful() {
			state = n.Start(batch.NumSeqs())
		}
		pass := n.Forward(state, batch)
		total += pass.Loss(batch.Targets)
		state = pass.State()
		count++
	}
	if count == 0 {
		return 0, ErrNoBatches
	}
	return total / float64(count), nil
}

func isDone(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
