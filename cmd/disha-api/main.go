package main

import (
	"context"
	"io"
	"log"
	"math/rand"
	"net/http"

	httpadapter "github.com/dishalabs/disha-agent/internal/adapters/http"
	"github.com/dishalabs/disha-agent/internal/adapters/llm"
	"github.com/dishalabs/disha-agent/internal/adapters/speech"
	"github.com/dishalabs/disha-agent/internal/adapters/speech/deepgram"
	"github.com/dishalabs/disha-agent/internal/adapters/storage/credfile"
	"github.com/dishalabs/disha-agent/internal/adapters/storage/memory"
	"github.com/dishalabs/disha-agent/internal/app/compose"
	"github.com/dishalabs/disha-agent/internal/app/conversation"
	"github.com/dishalabs/disha-agent/internal/app/knowledge"
	"github.com/dishalabs/disha-agent/internal/config"
	"github.com/dishalabs/disha-agent/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	creds := credfile.NewStore(cfg.CredentialFile)

	var (
		gateway domain.InferenceClient
		err     error
	)
	switch cfg.Provider {
	case config.ProviderMock:
		log.Println("[LLM] Using mock inference client")
		gateway = llm.NewMockClient()
	case config.ProviderGemini:
		key, kerr := creds.Credential()
		if kerr != nil {
			log.Fatalf("error reading credential: %v", kerr)
		}
		if key == "" {
			log.Println("[LLM] No credential configured, answers come from the built-in guide")
		} else {
			log.Println("[LLM] Using Gemini inference client")
			gateway, err = llm.NewGeminiClient(ctx, key, cfg.ModelName, cfg.MaxTokens, cfg.Temperature)
			if err != nil {
				log.Fatalf("error initializing Gemini client: %v", err)
			}
		}
	default:
		log.Println("[LLM] Using chat-completions inference client")
		gateway = llm.NewChatCompletionsClient(llm.ChatConfig{
			Endpoint:    cfg.ChatEndpoint,
			Model:       cfg.ModelName,
			Timeout:     cfg.GatewayTimeout,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}, creds)
	}

	var (
		recognizer  domain.RecognitionEngine
		synthesizer domain.SynthesisEngine
	)
	if cfg.Speech == config.SpeechDeepgram {
		log.Println("[SPEECH] Using Deepgram speech engines")
		dgCfg := deepgram.Config{APIKey: cfg.SpeechAPIKey, SmartFormat: true}
		recognizer = deepgram.NewRecognizer(dgCfg)
		synthesizer = deepgram.NewSynthesizer(dgCfg, io.Discard)
	} else {
		log.Println("[SPEECH] No speech engine configured")
	}

	output := speech.NewOutputSession(synthesizer, cfg.SpeechRate, cfg.Muted)
	defer output.Close()

	var input *speech.InputSession
	if recognizer != nil {
		input = speech.NewInputSession(recognizer, domain.RecognitionConfig{
			SampleRate:     16000,
			Channels:       1,
			Encoding:       "linear16",
			Language:       cfg.SpeechLanguage,
			InterimResults: true,
		})
		defer input.Close()
	}

	composer := compose.New(knowledge.New(), rand.Intn)

	svc := conversation.NewService(
		gateway,
		composer,
		memory.NewSessionStore(),
		memory.NewMessageStore(),
		output,
		conversation.Options{
			HistoryWindow: cfg.HistoryWindow,
			ThinkDelay:    cfg.ThinkDelay,
		},
	)

	handler := httpadapter.NewServer(svc, creds, input)

	addr := ":" + cfg.Port
	log.Println("Disha API listening on port:", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
