package generator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fragrancepalette/backend/internal/db"
	"github.com/fragrancepalette/backend/internal/model"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// minMixingLength guards against truncated or low-quality generations; a
// shorter mixing text is replaced with deterministic instructions.
const minMixingLength = 30

var (
	topNoteRe    = regexp.MustCompile(`(?i)top note:?\s*([^\n]+)`)
	middleNoteRe = regexp.MustCompile(`(?i)middle note:?\s*([^\n]+)`)
	baseNoteRe   = regexp.MustCompile(`(?i)base note:?\s*([^\n]+)`)
	nameRe       = regexp.MustCompile(`(?i)name:?\s*([^\n]+)`)
	mixingRe     = regexp.MustCompile(`(?i)instructions?:?\s*([^\n]+)`)
)

type notes struct {
	Top    string
	Middle string
	Base   string
}

// Synthesizer turns a free-text description into a complete Formula:
// classify family, select notes, generate name and mixing, assemble. Only a
// missing family row aborts the pipeline; a dead generation backend degrades
// to deterministic content drawn from the family's seed ingredients.
type Synthesizer struct {
	db  *db.DB
	llm TextGenerator
}

func NewSynthesizer(database *db.DB, llm TextGenerator) *Synthesizer {
	return &Synthesizer{db: database, llm: llm}
}

func (s *Synthesizer) Synthesize(ctx context.Context, description string) (*model.Formula, error) {
	family, err := s.db.GetFamilyByName(ClassifyFamily(description))
	if err != nil {
		return nil, err
	}
	log.Debugf("identified family: %s", family.Name)

	n := s.generateNotes(ctx, description, family)
	name, mixing := s.generateNameAndMixing(ctx, n, family)

	lower := strings.ToLower(family.Name)
	return &model.Formula{
		FragranceFamilyID: family.ID,
		Name:              name,
		Description: fmt.Sprintf("A %s fragrance with %s top notes, %s middle notes, and %s base notes.",
			lower, n.Top, n.Middle, n.Base),
		TopNote:    n.Top,
		MiddleNote: n.Middle,
		BaseNote:   n.Base,
		Mixing:     mixing,
	}, nil
}

func (s *Synthesizer) generateNotes(ctx context.Context, description string, family *model.FragranceFamily) notes {
	fallback := notes{
		Top:    family.Ingredient(0, "Bergamot"),
		Middle: family.Ingredient(1, "Rose"),
		Base:   family.Ingredient(2, "Sandalwood"),
	}

	prompt := fmt.Sprintf(`<|begin_of_text|><|start_header_id|>system<|end_header_id|>
You are a professional perfumer. Create specific perfume ingredients for each note level.

<|eot_id|><|start_header_id|>user<|end_header_id|>
For a %s fragrance described as "%s", suggest exactly ONE specific ingredient for each note level:

Top note:
Middle note:
Base note:

<|eot_id|><|start_header_id|>assistant<|end_header_id|>`, strings.ToLower(family.Name), description)

	params := DefaultParams()
	params.Temperature = 0.6
	params.MaxNewTokens = 100
	params.Stop = []string{"<|eot_id|>"}

	response, err := s.llm.Generate(ctx, prompt, params)
	if err != nil {
		log.Warnf("note generation failed, using %s seed ingredients: %v", family.Name, err)
		return fallback
	}
	return notes{
		Top:    extract(topNoteRe, response, fallback.Top),
		Middle: extract(middleNoteRe, response, fallback.Middle),
		Base:   extract(baseNoteRe, response, fallback.Base),
	}
}

func (s *Synthesizer) generateNameAndMixing(ctx context.Context, n notes, family *model.FragranceFamily) (string, string) {
	lower := strings.ToLower(family.Name)

	namePrompt := fmt.Sprintf(`Create a creative perfume name for a %s fragrance with these notes:
- Top: %s
- Middle: %s
- Base: %s

Name: `, lower, n.Top, n.Middle, n.Base)

	mixingPrompt := fmt.Sprintf(`Provide simple mixing instructions for a beginner perfumer making a %s fragrance with:
- Top note: %s
- Middle note: %s
- Base note: %s

Instructions: `, lower, n.Top, n.Middle, n.Base)

	nameParams := DefaultParams()
	nameParams.Temperature = 0.8
	nameParams.MaxNewTokens = 20

	mixingParams := DefaultParams()
	mixingParams.Temperature = 0.5
	mixingParams.MaxNewTokens = 100

	var nameResp, mixingResp string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nameResp, err = s.llm.Generate(gctx, namePrompt, nameParams)
		return err
	})
	g.Go(func() error {
		var err error
		mixingResp, err = s.llm.Generate(gctx, mixingPrompt, mixingParams)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Warnf("name/mixing generation failed, using deterministic fallback: %v", err)
		return fmt.Sprintf("%s %s Blend", n.Top, family.Name),
			fmt.Sprintf("Combine 3 drops of %s, 2 drops of %s, and 1 drop of %s. Let mature for one week.",
				n.Top, n.Middle, n.Base)
	}

	name := extract(nameRe, nameResp, fmt.Sprintf("%s %s Essence", n.Top, family.Name))
	mixing := extract(mixingRe, mixingResp,
		fmt.Sprintf("Combine 3 drops of %s, 2 drops of %s, and 1 drop of %s. Let mature for one week.",
			n.Top, n.Middle, n.Base))
	if len(mixing) < minMixingLength {
		mixing = fmt.Sprintf("Combine 3 drops of %s, 2 drops of %s, and 1 drop of %s. Mix gently and let mature for one week in a cool, dark place.",
			n.Top, n.Middle, n.Base)
	}
	return name, mixing
}

func extract(re *regexp.Regexp, response, fallback string) string {
	if m := re.FindStringSubmatch(response); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
	}
	return fallback
}
