package detect

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deepsift/deepsift/internal/httpc"
)

// Model asset sources. The SSD ResNet-10 face detector ships with the
// OpenCV samples; the Haar cascade is the classical fallback.
const (
	dnnModelURL  = "https://raw.githubusercontent.com/opencv/opencv_3rdparty/dnn_samples_face_detector_20170830/res10_300x300_ssd_iter_140000.caffemodel"
	dnnConfigURL = "https://raw.githubusercontent.com/opencv/opencv/master/samples/dnn/face_detector/deploy.prototxt"
	haarModelURL = "https://raw.githubusercontent.com/opencv/opencv/master/data/haarcascades/haarcascade_frontalface_default.xml"

	dnnModelFile  = "res10_300x300_ssd_iter_140000.caffemodel"
	dnnConfigFile = "deploy.prototxt"
	haarModelFile = "haarcascade_frontalface_default.xml"
)

// ensureFile downloads url into dir/name unless it is already cached.
func ensureFile(dir, name, url string) (string, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := httpc.Download(url, path); err != nil {
		return "", fmt.Errorf("detect: fetch %s: %w", name, err)
	}
	return path, nil
}

// ensureDNNModels returns the cached prototxt and caffemodel paths,
// downloading them on first use.
func ensureDNNModels(dir string) (configPath, modelPath string, err error) {
	if configPath, err = ensureFile(dir, dnnConfigFile, dnnConfigURL); err != nil {
		return "", "", err
	}
	if modelPath, err = ensureFile(dir, dnnModelFile, dnnModelURL); err != nil {
		return "", "", err
	}
	return configPath, modelPath, nil
}

// ensureHaarModel returns the cached cascade path, downloading on first use.
func ensureHaarModel(dir string) (string, error) {
	return ensureFile(dir, haarModelFile, haarModelURL)
}
