package openai

import (
	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/pkg/errors"
	"github.com/tiktoken-go/tokenizer"
)

// Encodings are the codecs the tokens command can select directly.
var Encodings = []tokenizer.Encoding{
	tokenizer.R50kBase,
	tokenizer.P50kBase,
	tokenizer.P50kEdit,
	tokenizer.Cl100kBase,
}

// GetCodec returns the codec for model, falling back to encoding (or
// cl100k_base) for models the tokenizer does not know.
func GetCodec(model, encoding string) (tokenizer.Codec, error) {
	if model != "" {
		c, err := tokenizer.ForModel(tokenizer.Model(model))
		if err == nil {
			return c, nil
		}
	}
	if encoding == "" {
		encoding = string(tokenizer.Cl100kBase)
	}
	c, err := tokenizer.Get(tokenizer.Encoding(encoding))
	if err != nil {
		return nil, errors.Wrapf(err, "could not create tokenizer for %s", encoding)
	}
	return c, nil
}

func CountTokens(model string, text string) (int, error) {
	codec, err := GetCodec(model, "")
	if err != nil {
		return 0, err
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, errors.Wrap(err, "could not encode text")
	}
	return len(ids), nil
}

// CountMessageTokens approximates the prompt size of a conversation: the
// content tokens plus a fixed overhead per message.
func CountMessageTokens(model string, messages conversation.Conversation) (int, error) {
	codec, err := GetCodec(model, "")
	if err != nil {
		return 0, err
	}
	const perMessage = 4
	total := 3
	for _, m := range messages {
		ids, _, err := codec.Encode(m.Content)
		if err != nil {
			return 0, errors.Wrap(err, "could not encode message")
		}
		total += perMessage + len(ids)
	}
	return total, nil
}
