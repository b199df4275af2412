// Package model builds the gomlx computation graph of the emotion
// classifier: token embeddings, a small transformer encoder and a dense
// readout head. All numeric state lives in the gomlx context; this package
// holds no state of its own.
package model

import (
	"fmt"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/types/shapes"
)

// DType used for all model parameters and activations.
const DType = shapes.Float32

// Config fixes the architecture. It is saved alongside the checkpoint so the
// inference service rebuilds the exact same graph.
type Config struct {
	NumClasses   int     `json:"num_classes"`
	VocabSize    int     `json:"vocab_size"`
	MaxSeqLen    int     `json:"max_seq_len"`
	EmbedDim     int     `json:"embed_dim"`
	AttHeads     int     `json:"att_heads"`
	AttLayers    int     `json:"att_layers"`
	AttKeyDim    int     `json:"att_key_dim"`
	HiddenLayers int     `json:"hidden_layers"`
	HiddenDim    int     `json:"hidden_dim"`
	Dropout      float64 `json:"dropout"`
}

// Validate rejects configurations the graph builder cannot express.
func (c Config) Validate() error {
	if c.NumClasses < 2 {
		return fmt.Errorf("num_classes must be >= 2, got %d", c.NumClasses)
	}
	if c.VocabSize < 4 {
		return fmt.Errorf("vocab_size too small: %d", c.VocabSize)
	}
	if c.EmbedDim <= 0 || c.AttHeads <= 0 || c.AttLayers < 0 {
		return fmt.Errorf("invalid transformer dimensions: embed=%d heads=%d layers=%d",
			c.EmbedDim, c.AttHeads, c.AttLayers)
	}
	return nil
}

// Graph builds the classifier graph. It matches the train.ModelFn signature:
// inputs[0] is the [batch, maxSeqLen] token id tensor, the single output is
// the [batch, numClasses] logits.
func (c Config) Graph(ctx *context.Context, spec any, inputs []*Node) []*Node {
	_ = spec
	tokens := inputs[0]
	embed, mask := c.embedTokens(ctx, tokens)
	embed = c.encode(ctx.In("encoder"), embed, mask)

	// Pool over the sequence axis, then read out class logits.
	embed = ReduceMax(embed, 1)
	logits := c.readout(ctx.In("readout"), embed)
	return []*Node{logits}
}

// embedTokens embeds token ids and computes the padding mask.
func (c Config) embedTokens(ctx *context.Context, tokens *Node) (embed, mask *Node) {
	g := tokens.Graph()
	mask = NotEqual(tokens, ZerosLike(tokens))

	// Ids beyond the configured vocabulary collapse onto the last id.
	tokens = Where(GreaterOrEqual(tokens, Const(g, int32(c.VocabSize))),
		MulScalar(OnesLike(tokens), float64(c.VocabSize-1)),
		tokens)

	embed = layers.Embedding(ctx.In("tokens"), tokens, DType, c.VocabSize, c.EmbedDim)
	embed = Where(mask, embed, ZerosLike(embed))

	// Learned positional embedding, one per sequence position.
	posShape := embed.Shape().Copy()
	posShape.Dimensions[0] = 1
	posVar := ctx.In("positional").VariableWithShape("embeddings", posShape)
	embed = Add(embed, posVar.ValueGraph(embed.Graph()))
	return
}

// encode runs the stacked attention layers.
func (c Config) encode(ctx *context.Context, embed, mask *Node) *Node {
	g := embed.Graph()
	var dropout *Node
	if c.Dropout > 0 {
		dropout = ConstAsDType(g, DType, c.Dropout)
	}

	for i := 0; i < c.AttLayers; i++ {
		ctx := ctx.In(fmt.Sprintf("layer_%d", i))
		attOut := layers.MultiHeadAttention(ctx.In("attention"), embed, embed, embed, c.AttHeads, c.AttKeyDim).
			SetKeyMask(mask).SetQueryMask(mask).
			SetOutputDim(c.EmbedDim).
			SetValueHeadDim(c.EmbedDim).Done()
		if dropout != nil {
			attOut = layers.Dropout(ctx.In("att_dropout"), attOut, dropout)
		}
		embed = Add(embed, attOut)
		embed = layers.LayerNormalization(ctx.In("att_norm"), embed, -1).Done()

		ffn := layers.Dense(ctx.In("ffn_1"), embed, true, c.EmbedDim)
		ffn = Tanh(ffn)
		ffn = layers.Dense(ctx.In("ffn_2"), ffn, true, c.EmbedDim)
		if dropout != nil {
			ffn = layers.Dropout(ctx.In("ffn_dropout"), ffn, dropout)
		}
		embed = Add(embed, ffn)
		embed = layers.LayerNormalization(ctx.In("ffn_norm"), embed, -1).Done()
	}
	return embed
}

// readout maps the pooled sequence embedding to class logits.
func (c Config) readout(ctx *context.Context, embed *Node) *Node {
	g := embed.Graph()
	var dropout *Node
	if c.Dropout > 0 {
		dropout = ConstAsDType(g, DType, c.Dropout)
	}

	for i := 0; i < c.HiddenLayers; i++ {
		ctx := ctx.In(fmt.Sprintf("dense_%d", i))
		residual := embed
		if dropout != nil {
			embed = layers.Dropout(ctx.In("dropout"), embed, dropout)
		}
		embed = layers.Relu(embed)
		embed = layers.DenseWithBias(ctx, embed, c.HiddenDim)
		embed = layers.LayerNormalization(ctx.In("norm"), embed, -1).Done()
		if i > 0 {
			embed = Add(embed, residual)
		}
	}

	ctx = ctx.In("logits")
	if dropout != nil {
		embed = layers.Dropout(ctx.In("dropout"), embed, dropout)
	}
	embed = layers.Relu(embed)
	return layers.DenseWithBias(ctx, embed, c.NumClasses)
}
