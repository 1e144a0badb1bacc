package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/sakhi/backend/internal/app"
	speechsvc "github.com/zhouzirui/sakhi/backend/internal/service/speech"
)

type speechFlags struct {
	language string
	session  string
	timeout  time.Duration
}

func newSpeechCmd() *cobra.Command {
	var flags speechFlags

	cmd := &cobra.Command{
		Use:   "speech",
		Short: "Smoke-test the configured speech provider",
	}
	cmd.PersistentFlags().StringVar(&flags.language, "lang", "", "语言代码，默认使用配置中的语言")
	cmd.PersistentFlags().StringVar(&flags.session, "session", "", "自定义 sessionID，留空则自动生成")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 45*time.Second, "请求超时时间")

	cmd.AddCommand(newASRCmd(&flags), newTTSCmd(&flags))
	return cmd
}

func newASRCmd(flags *speechFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "asr <audio-file>",
		Short: "Transcribe an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, language, err := openProvider(flags.language, true)
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return oops.Errorf("打开音频文件失败: %w", err)
			}
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
				if format == "" {
					format = "wav"
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			resp, err := provider.TranscribeBuffer(ctx, sessionID(flags.session), data, format, language)
			if err != nil {
				return oops.Errorf("ASR 调用失败: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "text=%q confidence=%.2f duration=%dms\n", resp.Text, resp.Confidence, resp.Duration)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "输入音频格式，默认取文件扩展名")
	return cmd
}

func newTTSCmd(flags *speechFlags) *cobra.Command {
	var (
		voice  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "tts <text>",
		Short: "Synthesize text into an audio file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, language, err := openProvider(flags.language, false)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			resp, err := provider.SynthesizeToBuffer(ctx, sessionID(flags.session), strings.Join(args, " "), voice, language)
			if err != nil {
				return oops.Errorf("TTS 调用失败: %w", err)
			}

			if output == "" {
				output = fmt.Sprintf("tts-output-%d.%s", time.Now().Unix(), resp.Format)
			}
			if err := os.WriteFile(output, resp.AudioData, 0o644); err != nil {
				return oops.Errorf("写入音频文件失败: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %dms)\n", output, len(resp.AudioData), resp.Duration)
			return nil
		},
	}
	cmd.Flags().StringVar(&voice, "voice", "", "TTS 声音 ID，默认使用配置中的 TTSVoice")
	cmd.Flags().StringVarP(&output, "out", "o", "", "输出音频文件路径")
	return cmd
}

func openProvider(language string, asr bool) (speechsvc.Provider, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.Speech.Enabled {
		return nil, "", oops.Errorf("语音服务未启用，请先在环境变量中配置 SPEECH_* 或 Ark 凭证")
	}

	provider, err := speechsvc.NewProvider(app.SpeechConfig(cfg.Speech))
	if err != nil {
		return nil, "", err
	}

	if language == "" {
		language = cfg.Speech.TTSLanguage
		if asr {
			language = cfg.Speech.ASRLanguage
		}
	}
	return provider, language, nil
}

func sessionID(custom string) string {
	if custom != "" {
		return custom
	}
	return "manual-" + uuid.NewString()
}
