package synth

import (
	"context"
	"fmt"
	"strings"

	"scriptsmith/internal/generator"
)

// Generator produces a complete replacement script. *generator.Service satisfies it.
type Generator interface {
	Generate(ctx context.Context, credential, instruction, baseText string) (string, error)
}

// CredentialSource looks up the credential sent to the generator.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

// StaticCredential is a fixed credential.
type StaticCredential string

// Credential implements CredentialSource.
func (s StaticCredential) Credential(context.Context) (string, error) {
	return string(s), nil
}

// Dispatch performs the generator call for req and stamps the outcome with its
// generation. It blocks; drivers run it off their event loop.
func Dispatch(req Request, gen Generator, creds CredentialSource) Result {
	ctx := req.Context()
	res := Result{Generation: req.Generation}

	credential := ""
	if creds != nil {
		c, err := creds.Credential(ctx)
		if err != nil {
			res.Err = fmt.Errorf("%w: %v", generator.ErrAuth, err)
			return res
		}
		credential = c
	}
	if strings.TrimSpace(credential) == "" {
		res.Err = fmt.Errorf("%w: no API key configured", generator.ErrAuth)
		return res
	}

	res.Text, res.Err = gen.Generate(ctx, credential, req.Instruction, req.BaseText)
	return res
}
