package diarize

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/diard/errors"
	"github.com/skillsenselab/diard/server"
)

// Ready reports whether the service can accept processing requests.
func (s *Service) Ready() bool {
	return s.diarizer.Loaded()
}

// RegisterRoutes mounts the processing endpoint on the Gin engine.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	r.POST("/process", ProcessHandler(svc))
}

// ProcessHandler handles POST /process: it reads the multipart "audio" field
// and runs the full diarization pipeline. The pipeline presence check runs
// before the upload body is pulled into memory, so an unloaded pipeline costs
// the client nothing but the round trip.
func ProcessHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !svc.Ready() {
			server.RespondWithError(c, errors.PipelineUnavailable())
			return
		}

		header, err := c.FormFile("audio")
		if err != nil {
			server.RespondWithError(c, errors.InvalidInput("missing multipart field: audio"))
			return
		}

		file, err := header.Open()
		if err != nil {
			server.RespondWithError(c, errors.Engine(err))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			server.RespondWithError(c, errors.Engine(err))
			return
		}

		result, err := svc.Process(c.Request.Context(), Upload{
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
			Filename:    header.Filename,
		})
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, result)
	}
}
