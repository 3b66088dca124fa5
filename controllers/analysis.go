package controllers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"go-donate/utils"
	"math"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	visionEndpoint = "https://vision.googleapis.com/v1/images:annotate"
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	geminiModel    = "gemini-2.0-flash"
)

// AnalysisController proxies image analysis calls so API keys stay
// server-side
type AnalysisController struct {
	Client *http.Client
	Logger *zap.Logger
}

// NewAnalysisController creates a new AnalysisController
func NewAnalysisController(logger *zap.Logger) *AnalysisController {
	return &AnalysisController{
		Client: &http.Client{Timeout: 30 * time.Second},
		Logger: logger,
	}
}

// DominantColor is one extracted color with its pixel share
type DominantColor struct {
	Hex   string  `json:"hex"`
	Score float64 `json:"score"`
}

// visionColor mirrors the Vision API IMAGE_PROPERTIES color entry
type visionColor struct {
	Color struct {
		Red   float64 `json:"red"`
		Green float64 `json:"green"`
		Blue  float64 `json:"blue"`
	} `json:"color"`
	PixelFraction float64 `json:"pixelFraction"`
}

type visionResponse struct {
	Responses []struct {
		ImagePropertiesAnnotation struct {
			DominantColors struct {
				Colors []visionColor `json:"colors"`
			} `json:"dominantColors"`
		} `json:"imagePropertiesAnnotation"`
	} `json:"responses"`
}

// RGBToHex converts Vision's float RGB channels to a #rrggbb string.
func RGBToHex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(r)),
		int(math.Round(g)),
		int(math.Round(b)))
}

// DominantColorsFromVision picks the top three colors by pixel fraction.
func DominantColorsFromVision(resp visionResponse) []DominantColor {
	if len(resp.Responses) == 0 {
		return nil
	}
	colors := resp.Responses[0].ImagePropertiesAnnotation.DominantColors.Colors
	if len(colors) == 0 {
		return nil
	}

	sorted := make([]visionColor, len(colors))
	copy(sorted, colors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PixelFraction > sorted[j].PixelFraction
	})
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	result := make([]DominantColor, 0, len(sorted))
	for _, c := range sorted {
		result = append(result, DominantColor{
			Hex:   RGBToHex(c.Color.Red, c.Color.Green, c.Color.Blue),
			Score: c.PixelFraction,
		})
	}
	return result
}

// defaultDominantColors is the fallback palette returned when the
// Vision call fails, so the client form never blocks on the API.
func defaultDominantColors() []DominantColor {
	return []DominantColor{
		{Hex: "#4287f5", Score: 0.5},
		{Hex: "#42f5a7", Score: 0.3},
		{Hex: "#f54242", Score: 0.2},
	}
}

// StripDataURL removes a data:image/...;base64, prefix if present.
func StripDataURL(s string) string {
	if strings.Contains(s, "data:image") {
		if idx := strings.Index(s, ","); idx >= 0 {
			return s[idx+1:]
		}
	}
	return s
}

// AnalyzeColor extracts the dominant colors of a submitted item photo
func (ac *AnalysisController) AnalyzeColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "No image data provided"})
		return
	}

	colors, err := ac.analyzeColor(req.Image)
	if err != nil {
		ac.Logger.Warn("vision analysis failed", zap.Error(err))
		colors = defaultDominantColors()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"dominantColors": colors})
}

func (ac *AnalysisController) analyzeColor(image string) ([]DominantColor, error) {
	raw, err := base64.StdEncoding.DecodeString(StripDataURL(image))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	shrunk, err := utils.ShrinkForAnalysis(raw)
	if err != nil {
		return nil, fmt.Errorf("shrinking image: %w", err)
	}

	body := map[string]interface{}{
		"requests": []map[string]interface{}{{
			"image": map[string]string{
				"content": base64.StdEncoding.EncodeToString(shrunk),
			},
			"features": []map[string]interface{}{{
				"type":       "IMAGE_PROPERTIES",
				"maxResults": 5,
			}},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s?key=%s", visionEndpoint, os.Getenv("GOOGLE_CLOUD_VISION_API_KEY"))
	resp, err := ac.Client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("calling vision api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision api returned status %d", resp.StatusCode)
	}

	var parsed visionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding vision response: %w", err)
	}

	colors := DominantColorsFromVision(parsed)
	if len(colors) == 0 {
		return nil, fmt.Errorf("vision response had no dominant colors")
	}
	return colors, nil
}

// geminiResponse mirrors the generateContent response shape
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiText extracts the concatenated candidate text.
func GeminiText(resp geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}

// AnalyzeWithGemini forwards an item photo and prompt to Gemini and
// returns the model's text answer
func (ac *AnalysisController) AnalyzeWithGemini(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AnalysisType string `json:"analysisType"`
		ImageData    string `json:"imageData"`
		Prompt       string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.ImageData == "" || req.AnalysisType == "" || req.Prompt == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Missing required fields: analysisType, imageData, prompt",
		})
		return
	}

	body := map[string]interface{}{
		"contents": []map[string]interface{}{{
			"role": "user",
			"parts": []map[string]interface{}{
				{"inline_data": map[string]string{
					"mime_type": "image/jpeg",
					"data":      StripDataURL(req.ImageData),
				}},
				{"text": req.Prompt},
			},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "AI processing failed"})
		return
	}

	url := fmt.Sprintf(geminiEndpoint+"?key=%s", geminiModel, os.Getenv("GEMINI_API_KEY"))
	resp, err := ac.Client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		ac.Logger.Error("gemini call failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "AI processing failed"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ac.Logger.Error("gemini returned non-200", zap.Int("status", resp.StatusCode))
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "AI processing failed"})
		return
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		ac.Logger.Error("gemini decode failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "AI processing failed"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"result":       GeminiText(parsed),
		"analysisType": req.AnalysisType,
	})
}
