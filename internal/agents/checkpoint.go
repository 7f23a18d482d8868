package agents

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/talgya/limsim/internal/entropy"
)

// denseParams holds one linear layer, y = Wx + b, with W stored row-major
// as out x in.
type denseParams struct {
	W [][]float64 `json:"w"`
	B []float64   `json:"b"`
}

// mlpParams is a two-layer perceptron with a ReLU between the layers.
type mlpParams struct {
	Hidden denseParams `json:"hidden"`
	Out    denseParams `json:"out"`
}

// gruParams holds one GRU cell in the common training-framework
// convention: separate input and hidden biases per gate.
type gruParams struct {
	WR  [][]float64 `json:"w_r"`
	UR  [][]float64 `json:"u_r"`
	BRI []float64   `json:"b_r_input"`
	BRH []float64   `json:"b_r_hidden"`

	WZ  [][]float64 `json:"w_z"`
	UZ  [][]float64 `json:"u_z"`
	BZI []float64   `json:"b_z_input"`
	BZH []float64   `json:"b_z_hidden"`

	WN  [][]float64 `json:"w_n"`
	UN  [][]float64 `json:"u_n"`
	BNI []float64   `json:"b_n_input"`
	BNH []float64   `json:"b_n_hidden"`
}

// checkpoint is the on-disk format for a trained recurrent policy. The
// encoder feeds the GRU at hidden width; each head narrows to half width
// before its scalar output.
type checkpoint struct {
	ObsDim          int       `json:"obs_dim"`
	HiddenDim       int       `json:"hidden_dim"`
	Encoder         mlpParams `json:"encoder"`
	GRU             gruParams `json:"gru"`
	PriceHead       mlpParams `json:"price_head"`
	ProductionHead  mlpParams `json:"production_head"`
	ProcurementHead mlpParams `json:"procurement_head"`
}

func loadCheckpoint(path string) (checkpoint, error) {
	var ck checkpoint
	raw, err := os.ReadFile(path)
	if err != nil {
		return ck, err
	}
	if err := json.Unmarshal(raw, &ck); err != nil {
		return ck, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ck.validate(); err != nil {
		return ck, fmt.Errorf("checkpoint %s: %w", path, err)
	}
	return ck, nil
}

func (c checkpoint) validate() error {
	if c.ObsDim != obsDim {
		return fmt.Errorf("trained on %d observation features, need %d", c.ObsDim, obsDim)
	}
	if c.HiddenDim < 2 {
		return fmt.Errorf("hidden_dim %d too small", c.HiddenDim)
	}
	h, half := c.HiddenDim, c.HiddenDim/2
	if err := c.Encoder.check("encoder", h, c.ObsDim, h); err != nil {
		return err
	}
	gates := []struct {
		name string
		w, u [][]float64
		bi   []float64
		bh   []float64
	}{
		{"r", c.GRU.WR, c.GRU.UR, c.GRU.BRI, c.GRU.BRH},
		{"z", c.GRU.WZ, c.GRU.UZ, c.GRU.BZI, c.GRU.BZH},
		{"n", c.GRU.WN, c.GRU.UN, c.GRU.BNI, c.GRU.BNH},
	}
	for _, g := range gates {
		if !dimsOK(g.w, h, h) || !dimsOK(g.u, h, h) || len(g.bi) != h || len(g.bh) != h {
			return fmt.Errorf("gru gate %s has wrong shape", g.name)
		}
	}
	for _, head := range []struct {
		name string
		mlp  mlpParams
	}{
		{"price_head", c.PriceHead},
		{"production_head", c.ProductionHead},
		{"procurement_head", c.ProcurementHead},
	} {
		if err := head.mlp.check(head.name, half, h, 1); err != nil {
			return err
		}
	}
	return nil
}

// check verifies an MLP maps in -> hidden -> out.
func (m mlpParams) check(name string, hidden, in, out int) error {
	if !dimsOK(m.Hidden.W, hidden, in) || len(m.Hidden.B) != hidden {
		return fmt.Errorf("%s hidden layer has wrong shape", name)
	}
	if !dimsOK(m.Out.W, out, hidden) || len(m.Out.B) != out {
		return fmt.Errorf("%s output layer has wrong shape", name)
	}
	return nil
}

func dimsOK(m [][]float64, rows, cols int) bool {
	if len(m) != rows {
		return false
	}
	for _, row := range m {
		if len(row) != cols {
			return false
		}
	}
	return true
}

// randomCheckpoint initialises a policy with uniform weights in
// [-1/sqrt(fanin), 1/sqrt(fanin)], the usual default for untrained nets.
func randomCheckpoint(rng *entropy.Source, obsDim, hiddenDim int) checkpoint {
	half := hiddenDim / 2
	return checkpoint{
		ObsDim:    obsDim,
		HiddenDim: hiddenDim,
		Encoder: mlpParams{
			Hidden: randomDense(rng, hiddenDim, obsDim),
			Out:    randomDense(rng, hiddenDim, hiddenDim),
		},
		GRU: gruParams{
			WR: randomMatrix(rng, hiddenDim, hiddenDim), UR: randomMatrix(rng, hiddenDim, hiddenDim),
			BRI: randomVector(rng, hiddenDim, hiddenDim), BRH: randomVector(rng, hiddenDim, hiddenDim),
			WZ: randomMatrix(rng, hiddenDim, hiddenDim), UZ: randomMatrix(rng, hiddenDim, hiddenDim),
			BZI: randomVector(rng, hiddenDim, hiddenDim), BZH: randomVector(rng, hiddenDim, hiddenDim),
			WN: randomMatrix(rng, hiddenDim, hiddenDim), UN: randomMatrix(rng, hiddenDim, hiddenDim),
			BNI: randomVector(rng, hiddenDim, hiddenDim), BNH: randomVector(rng, hiddenDim, hiddenDim),
		},
		PriceHead: mlpParams{
			Hidden: randomDense(rng, half, hiddenDim),
			Out:    randomDense(rng, 1, half),
		},
		ProductionHead: mlpParams{
			Hidden: randomDense(rng, half, hiddenDim),
			Out:    randomDense(rng, 1, half),
		},
		ProcurementHead: mlpParams{
			Hidden: randomDense(rng, half, hiddenDim),
			Out:    randomDense(rng, 1, half),
		},
	}
}

func randomDense(rng *entropy.Source, out, in int) denseParams {
	return denseParams{
		W: randomMatrix(rng, out, in),
		B: randomVector(rng, out, in),
	}
}

func randomMatrix(rng *entropy.Source, rows, cols int) [][]float64 {
	bound := 1.0 / math.Sqrt(float64(cols))
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = rng.Uniform(-bound, bound)
		}
	}
	return m
}

// randomVector draws n values bounded by the fan-in of the layer the
// vector belongs to.
func randomVector(rng *entropy.Source, n, fanIn int) []float64 {
	bound := 1.0 / math.Sqrt(float64(fanIn))
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.Uniform(-bound, bound)
	}
	return v
}
