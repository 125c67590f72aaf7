package dicomsource

import (
	"strconv"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"mprview/internal/logging"
	"mprview/internal/models"
)

// ReadFile decodes one DICOM file. Files that fail to parse are logged and
// returned as records without pixels.
func ReadFile(path string) (rec models.SliceRecord) {
	rec.Source = path

	// the parser can panic on truncated files
	defer func() {
		if r := recover(); r != nil {
			logging.Warningf("Skipping %s: parser panic: %v", path, r)
			rec = models.SliceRecord{Source: path}
		}
	}()

	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		logging.Warningf("Skipping %s: %v", path, err)
		return rec
	}
	return recordFromDataset(path, ds)
}

// recordFromDataset maps the tags used by the loader onto a SliceRecord
func recordFromDataset(source string, ds dicom.Dataset) models.SliceRecord {
	rec := models.SliceRecord{
		Source:           source,
		InstanceNumber:   tagValue(ds, tag.InstanceNumber),
		ImagePosition:    tagValue(ds, tag.ImagePositionPatient),
		SliceThickness:   tagValue(ds, tag.SliceThickness),
		RescaleSlope:     tagValue(ds, tag.RescaleSlope),
		RescaleIntercept: tagValue(ds, tag.RescaleIntercept),
		WindowCenter:     tagValue(ds, tag.WindowCenter),
		WindowWidth:      tagValue(ds, tag.WindowWidth),
	}
	rec.Rows, _ = tagValue(ds, tag.Rows).Int()
	rec.Cols, _ = tagValue(ds, tag.Columns).Int()
	rec.Pixels = pixelSamples(ds)
	if rec.Pixels == nil {
		logging.Debugf("%s has no native pixel data", source)
	}
	return rec
}

// tagValue returns the element's values as strings, or nil if the tag is absent
func tagValue(ds dicom.Dataset, t tag.Tag) models.TagValue {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem.Value == nil {
		return nil
	}

	switch v := elem.Value.GetValue().(type) {
	case []string:
		return models.TagValue(append([]string{}, v...))
	case []int:
		out := make(models.TagValue, len(v))
		for i, n := range v {
			out[i] = strconv.Itoa(n)
		}
		return out
	case []float64:
		out := make(models.TagValue, len(v))
		for i, f := range v {
			out[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return out
	default:
		return nil
	}
}

// pixelSamples returns the first frame's samples, or nil when the file has
// no pixel data or only encapsulated (compressed) frames
func pixelSamples(ds dicom.Dataset) []int {
	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil || elem.Value == nil {
		return nil
	}
	info, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || info.IsEncapsulated || len(info.Frames) == 0 {
		return nil
	}
	fr := info.Frames[0]
	if fr == nil || fr.Encapsulated {
		return nil
	}
	return nativeSamples(fr.NativeData)
}

// nativeSamples flattens a native frame, keeping the first sample of each pixel
func nativeSamples(nf frame.NativeFrame) []int {
	if len(nf.Data) == 0 {
		return nil
	}
	out := make([]int, len(nf.Data))
	for i, px := range nf.Data {
		if len(px) > 0 {
			out[i] = px[0]
		}
	}
	return out
}
