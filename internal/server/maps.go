package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/heightmap"
	"github.com/matzehuels/hmaputil/pkg/imageio"
	"github.com/matzehuels/hmaputil/pkg/pipeline"
)

func (s *Server) handleMaps(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, uploadError(err, s.maxUpload))
		return
	}
	defer r.MultipartForm.RemoveAll()

	hm, err := readPart(r, "heightmap")
	if err != nil {
		writeError(w, uploadError(err, s.maxUpload))
		return
	}
	if hm == nil {
		writeError(w, errs.New(errs.ErrCodeInputMissing, "Missing multipart field \"heightmap\"."))
		return
	}
	track, err := readPart(r, "trackmask")
	if err != nil {
		writeError(w, uploadError(err, s.maxUpload))
		return
	}

	sink := imageio.NewMemorySink()
	res, err := s.runner.ExecuteBytes(r.Context(), hm, track, req, sink, nil)
	if err != nil {
		s.logger.Warn("render failed", "error", err)
		writeError(w, err)
		return
	}

	id := res.ID.String()
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", contentDisposition(id))
	w.Header().Set("X-Run-ID", id)
	if res.CacheHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	for _, warning := range res.Warnings {
		w.Header().Add("X-Warning", warning)
	}
	w.WriteHeader(http.StatusOK)

	if err := writeZip(w, sink, res); err != nil {
		s.logger.Warn("writing zip failed", "run", id, "error", err)
	}
}

// writeZip streams the artifacts in product order. PNG data is already
// deflated, so entries are stored.
func writeZip(w http.ResponseWriter, sink *imageio.MemorySink, res *pipeline.Result) error {
	zw := zip.NewWriter(w)
	for _, p := range pipeline.Products {
		name := res.Artifact(p)
		if name == "" {
			continue
		}
		data, ok := sink.Get(name)
		if !ok {
			continue
		}
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// requestFromQuery builds a pipeline request from query values. Missing
// values take the pipeline defaults; products defaults to relief.
func requestFromQuery(q url.Values) (pipeline.Request, error) {
	req := pipeline.DefaultRequest()
	req.Relief = false

	products := q.Get("products")
	if products == "" {
		products = pipeline.ProductRelief.String()
	}
	for _, name := range strings.Split(products, ",") {
		p, err := pipeline.ParseProduct(strings.TrimSpace(name))
		if err != nil {
			return req, err
		}
		switch p {
		case pipeline.ProductRG:
			req.RG = true
		case pipeline.ProductRelief:
			req.Relief = true
		case pipeline.ProductRGBMask:
			req.RGBMask = true
		case pipeline.ProductCustom:
			req.Custom = true
		}
	}

	floats := []struct {
		key  string
		dst  *float64
		code errs.Code
	}{
		{"multiplier", &req.Multiplier, errs.ErrCodeMultiplierInvalid},
		{"lower", &req.LowerBound, errs.ErrCodeBoundsInvalid},
		{"upper", &req.UpperBound, errs.ErrCodeBoundsInvalid},
	}
	for _, f := range floats {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, errs.Wrap(f.code, err, "Invalid %s %q.", f.key, v)
		}
		*f.dst = parsed
	}

	hex := req.Colors.Hex()
	for i, key := range [4]string{"red", "green", "blue", "black"} {
		if v := q.Get(key); v != "" {
			hex[i] = v
		}
	}
	colors, err := heightmap.ParseColorQuad(hex[0], hex[1], hex[2], hex[3])
	if err != nil {
		return req, err
	}
	req.Colors = colors
	return req, nil
}
