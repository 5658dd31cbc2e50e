// Package gateway sits between the UI surface and the hosted model. It
// deduplicates repeated generation requests through the response cache and
// enforces the two-pass generate-then-verify workflow: single-pass output
// from a probabilistic model is not reliable enough to guarantee internally
// consistent identifiers and cross-references, so every result with files is
// resubmitted once at temperature zero for correction before it is returned
// or cached.
package gateway

import (
	"context"
	"encoding/base64"
	"mime"
	"path"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/packsmith-labs/packsmith/internal/addon"
	"github.com/packsmith-labs/packsmith/internal/cachekey"
	"github.com/packsmith-labs/packsmith/internal/generator"
	"github.com/packsmith-labs/packsmith/internal/respcache"
)

// verifyInstruction is the fixed correction-pass instruction. The pass only
// regenerates files; relocations, plan and report carry over from the first
// pass untouched.
const verifyInstruction = "You are a strict reviewer of game addon packs. " +
	"Validate the provided files for schema correctness, consistent identifiers and " +
	"unbroken cross-references. Return the full corrected set of files in the same " +
	"JSON shape. Do not add or remove features. Do not return relocations, a plan or a report."

// resultSchema is forwarded to the model as a response-shape hint.
const resultSchema = `{"type":"object","properties":{` +
	`"files":{"type":"array","items":{"type":"object","properties":{"path":{"type":"string"},"content":{"type":"string"}},"required":["path","content"]}},` +
	`"relocations":{"type":"array","items":{"type":"object","properties":{"originalPath":{"type":"string"},"newPath":{"type":"string"}},"required":["originalPath","newPath"]}},` +
	`"plan":{"type":"string"},"report":{"type":"string"}}}`

// Gateway wraps the model client with caching and verification.
type Gateway struct {
	gen   generator.Client
	cache respcache.Store
}

func New(gen generator.Client, cache respcache.Store) *Gateway {
	return &Gateway{gen: gen, cache: cache}
}

// Invoke runs one logical generation request. Identical
// (instruction, prompt, inputs) triples short-circuit to the cached result
// without touching the network; a miss costs two model round trips.
func (g *Gateway) Invoke(ctx context.Context, systemInstruction, prompt string, inputs []addon.UploadedInput, temperature float64) (addon.Result, error) {
	key := cachekey.DeriveStrings(systemInstruction, prompt, Fingerprint(inputs))

	if raw, ok := g.cache.Get(ctx, key); ok {
		var cached addon.Result
		if err := sonic.UnmarshalString(raw, &cached); err == nil {
			log.Debug().Str("key", key).Msg("generation cache hit")
			return cached, nil
		}
		log.Warn().Str("key", key).Msg("cached result corrupt, regenerating")
	}

	first, err := g.generate(ctx, systemInstruction, prompt, inputs, temperature)
	if err != nil {
		return addon.Result{}, err
	}
	if len(first.Files) == 0 {
		return addon.Result{}, &GenerationError{Stage: "generate", Err: ErrEmptyResult}
	}

	verified, err := g.verify(ctx, first.Files)
	if err != nil {
		return addon.Result{}, err
	}

	if diff := verificationDiff(first.Files, verified); diff != "" {
		log.Debug().Str("diff", diff).Msg("verification pass changed generated files")
	}

	final := addon.Result{
		Files:       verified,
		Relocations: first.Relocations,
		Plan:        first.Plan,
		Report:      first.Report,
	}

	if raw, err := sonic.MarshalString(final); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("result not cacheable")
	} else {
		g.cache.Set(ctx, key, raw)
	}
	return final, nil
}

func (g *Gateway) generate(ctx context.Context, systemInstruction, prompt string, inputs []addon.UploadedInput, temperature float64) (addon.Result, error) {
	parts := make([]generator.Part, 0, len(inputs)+1)
	parts = append(parts, generator.TextPart(prompt))
	for _, in := range inputs {
		parts = append(parts, inputPart(in))
	}

	text, err := g.gen.Generate(ctx, generator.Request{
		Instruction: systemInstruction,
		Parts:       parts,
		Temperature: temperature,
		JSONSchema:  resultSchema,
	})
	if err != nil {
		return addon.Result{}, &GenerationError{Stage: "generate", Err: err}
	}

	var result addon.Result
	if err := sonic.UnmarshalString(text, &result); err != nil {
		log.Error().Err(err).Msg("first-pass response is not valid structured output")
		return addon.Result{}, &GenerationError{Stage: "generate", Err: ErrUnparseable}
	}
	return result, nil
}

// verify resubmits the generated files as context at temperature zero and
// returns the corrected file set.
func (g *Gateway) verify(ctx context.Context, files []addon.GeneratedFile) ([]addon.GeneratedFile, error) {
	parts := make([]generator.Part, 0, len(files))
	for _, f := range files {
		parts = append(parts, generator.TextPart("// "+f.Path+"\n"+f.Content))
	}

	text, err := g.gen.Generate(ctx, generator.Request{
		Instruction: verifyInstruction,
		Parts:       parts,
		Temperature: 0,
		JSONSchema:  resultSchema,
	})
	if err != nil {
		return nil, &GenerationError{Stage: "verify", Err: err}
	}

	var result addon.Result
	if err := sonic.UnmarshalString(text, &result); err != nil {
		log.Error().Err(err).Msg("verification response is not valid structured output")
		return nil, &GenerationError{Stage: "verify", Err: ErrUnparseable}
	}
	if len(result.Files) == 0 {
		return nil, &GenerationError{Stage: "verify", Err: ErrVerificationEmpty}
	}
	return result.Files, nil
}

func inputPart(in addon.UploadedInput) generator.Part {
	if isText(in.Bytes) {
		return generator.TextPart("// " + in.Name + "\n" + string(in.Bytes))
	}
	mimeType := mime.TypeByExtension(path.Ext(in.Name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return generator.Part{InlineData: &generator.InlineData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(in.Bytes),
	}}
}
