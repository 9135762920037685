package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fjcanyue/smart-survey/internal/survey"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cl := &client{
		BaseURL:   envOr("SMARTSURVEY_URL", "http://localhost:8787"),
		Session:   envOr("SMARTSURVEY_SESSION", ""),
		OutFormat: envOr("SMARTSURVEY_OUT", "text"),
		HTTP:      &http.Client{Timeout: 90 * time.Second},
	}

	root := &cobra.Command{
		Use:           "smartsurvey",
		Short:         "CLI para el API de Smart Survey",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cl.BaseURL, "url", cl.BaseURL, "URL base del backend (env SMARTSURVEY_URL)")
	root.PersistentFlags().StringVar(&cl.Session, "session", cl.Session, "Cookie de sesión para comandos autenticados (env SMARTSURVEY_SESSION)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", cl.OutFormat, "Formato de salida: json|text")

	root.AddCommand(
		validateCmd(),
		generateCmd(cl),
		getCmd(cl),
		mineCmd(cl),
		deleteCmd(cl),
		resultsCmd(cl),
		statsCmd(cl),
	)
	return root
}

// validate: chequeo local, no toca el backend.
func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json>",
		Short: "Valida la estructura mínima de un JSON de encuesta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := survey.ValidateDefinition(b); err != nil {
				if errors.Is(err, survey.ErrInvalidDefinition) {
					return fmt.Errorf("invalid: %s", survey.Reason(err))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func generateCmd(cl *client) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Genera una encuesta a partir de una descripción",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := cl.call(http.MethodPost, "/api/surveys/generate", map[string]string{"prompt": args[0]}, nil)
			if err != nil {
				return err
			}
			cl.print(cmd.OutOrStdout(), raw)
			return nil
		},
	}
}

func getCmd(cl *client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <surveyId>",
		Short: "Muestra una encuesta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := cl.call(http.MethodGet, "/api/surveys/"+url.PathEscape(args[0]), nil, nil)
			if err != nil {
				return err
			}
			cl.print(cmd.OutOrStdout(), raw)
			return nil
		},
	}
}

func mineCmd(cl *client) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "my",
		Short: "Lista las encuestas del usuario de la sesión",
		RunE: func(cmd *cobra.Command, args []string) error {
			var page struct {
				Surveys []struct {
					ID        string    `json:"id"`
					Title     string    `json:"title"`
					UpdatedAt time.Time `json:"updatedAt"`
				} `json:"surveys"`
				Total int `json:"total"`
			}
			raw, err := cl.call(http.MethodGet, pagePath("/api/surveys/my", limit, offset), nil, &page)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cl.OutFormat == "json" {
				cl.print(out, raw)
				return nil
			}
			for _, s := range page.Surveys {
				fmt.Fprintf(out, "%s\t%s\t%s\n", s.ID, s.UpdatedAt.Local().Format("2006-01-02 15:04"), s.Title)
			}
			fmt.Fprintf(out, "total=%d\n", page.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Máximo de encuestas (default del servidor)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Desplazamiento")
	return cmd
}

func deleteCmd(cl *client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <surveyId>",
		Short: "Borra una encuesta propia junto con sus respuestas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cl.call(http.MethodDelete, "/api/surveys/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

func resultsCmd(cl *client) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "results <surveyId>",
		Short: "Lista las respuestas con los textos de cada opción",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := url.PathEscape(args[0])
			var page resultsPage
			raw, err := cl.call(http.MethodGet, pagePath("/api/results/"+id, limit, offset), nil, &page)
			if err != nil {
				return err
			}
			if cl.OutFormat == "json" {
				cl.print(cmd.OutOrStdout(), raw)
				return nil
			}
			var sv struct {
				JSON json.RawMessage `json:"json"`
			}
			if _, err := cl.call(http.MethodGet, "/api/surveys/"+id, nil, &sv); err != nil {
				return err
			}
			def, err := survey.ParseDefinition(sv.JSON)
			if err != nil {
				return err
			}
			renderResults(cmd.OutOrStdout(), def, page)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Máximo de respuestas (default del servidor)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Desplazamiento")
	return cmd
}

func statsCmd(cl *client) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <surveyId>",
		Short: "Distribución de respuestas por pregunta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var st statsPage
			raw, err := cl.call(http.MethodGet, "/api/results/"+url.PathEscape(args[0])+"/stats", nil, &st)
			if err != nil {
				return err
			}
			if cl.OutFormat == "json" {
				cl.print(cmd.OutOrStdout(), raw)
				return nil
			}
			renderStats(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func pagePath(path string, limit, offset int) string {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
