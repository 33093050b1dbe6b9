package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/femoon/tts-azure-web/backend/internal/config"
	"github.com/femoon/tts-azure-web/backend/internal/logging"
	speechmodel "github.com/femoon/tts-azure-web/backend/internal/model/speech"
	"github.com/femoon/tts-azure-web/backend/internal/service/speech"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{Level: cfg.Log.Level, Format: "console"})
	if envErr != nil {
		log.Warn().Err(envErr).Msg("无法加载 .env，改用系统环境变量")
	}

	if !cfg.Speech.Enabled {
		log.Fatal().Msg("语音服务未启用，请先配置 SPEECH_KEY 与 SPEECH_REGION")
	}

	mode := flag.String("mode", "tts", "测试模式: tts 或 voices")
	text := flag.String("text", "", "TTS 输入文本")
	language := flag.String("lang", "en-US", "语言代码")
	gender := flag.String("gender", "Female", "声音性别")
	voice := flag.String("voice", "en-US-JennyNeural", "声音名称")
	style := flag.String("style", "", "说话风格，可选")
	role := flag.String("role", "", "角色扮演，可选")
	outputPath := flag.String("out", "", "输出 MP3 文件路径 (默认自动生成)")
	timeout := flag.Duration("timeout", 45*time.Second, "请求超时时间")

	flag.Parse()

	svc, err := speech.NewService(cfg.Speech.ServiceConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("语音服务初始化失败")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "tts":
		req := &speechmodel.SynthesisRequest{
			Input: *text,
			Config: speechmodel.VoiceConfig{
				Lang:      *language,
				Gender:    *gender,
				VoiceName: *voice,
				Style:     *style,
				Role:      *role,
			},
		}
		runTTS(ctx, svc, req, *outputPath)
	case "voices":
		runVoices(ctx, svc, *language)
	default:
		flag.Usage()
		log.Fatal().Str("mode", *mode).Msg("请通过 -mode=tts 或 -mode=voices 指定测试模式")
	}
}

func runTTS(ctx context.Context, svc *speech.Service, req *speechmodel.SynthesisRequest, outputPath string) {
	if strings.TrimSpace(req.Input) == "" {
		log.Fatal().Msg("TTS 模式需要通过 -text 提供待合成文本")
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("tts-output-%d.mp3", time.Now().Unix())
	}

	log.Info().
		Str("voice", req.Config.VoiceName).
		Str("lang", req.Config.Lang).
		Str("style", req.Config.Style).
		Msg("开始进行 TTS 测试")

	resp, err := svc.Synthesize(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Str("kind", string(speech.KindOf(err))).Msg("TTS 调用失败")
	}

	audio, err := base64.StdEncoding.DecodeString(resp.Base64Audio)
	if err != nil {
		log.Fatal().Err(err).Msg("音频解码失败")
	}

	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		log.Fatal().Err(err).Msg("写入音频文件失败")
	}

	log.Info().Str("file", outputPath).Int("bytes", len(audio)).Msg("TTS 合成成功")
}

func runVoices(ctx context.Context, svc *speech.Service, language string) {
	voices, err := svc.ListVoices(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("kind", string(speech.KindOf(err))).Msg("声音列表获取失败")
	}

	count := 0
	for _, v := range voices {
		if language != "" && !strings.EqualFold(v.Locale, language) {
			continue
		}
		count++
		fmt.Printf("%-40s %-8s %s\n", v.ShortName, v.Gender, strings.Join(v.StyleList, ","))
	}
	log.Info().Int("total", len(voices)).Int("matched", count).Msg("声音列表获取成功")
}
