package success

import (
	"encoding/base64"
	"html/template"
	"log/slog"
	"net/http"

	"eventsBooking/internal/lib/logger/sl"
	"eventsBooking/internal/web"

	"github.com/go-chi/chi/v5/middleware"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// New renders the post-checkout confirmation. It trusts the booking query
// parameter and does not check that the booking was paid.
func New(log *slog.Logger, renderer *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pages.success.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		data := web.SuccessData{BookingID: r.URL.Query().Get("booking")}

		if data.BookingID != "" {
			png, err := qrcode.Encode(data.BookingID, qrcode.Medium, qrSize)
			if err != nil {
				log.Warn("failed to generate qr code", sl.Err(err))
			} else {
				data.QRCode = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
			}
		}

		if err := renderer.Render(w, http.StatusOK, web.PageSuccess, data); err != nil {
			log.Error("failed to render page", sl.Err(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
