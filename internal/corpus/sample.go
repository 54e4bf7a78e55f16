// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"fmt"
	"os"
	"path/filepath"
)

// sampleKnowledgeBase is a small, topically distinct corpus about future
// computing architectures. Each section uses vocabulary the others lack so
// retrieval quality is easy to eyeball.
const sampleKnowledgeBase = `## The Evolution of Future Computing Architectures

**1. Quantum Computing:**
Quantum computing uses quantum-mechanical phenomena such as superposition and entanglement to perform computation. Unlike a classical bit (0 or 1), a qubit can represent 0 and 1 at the same time. The main models are gate-based quantum computing, quantum annealing and topological quantum computing. IBM's Qiskit and Google's Cirq are popular quantum programming frameworks. Quantum supremacy refers to a quantum computer outperforming the strongest classical computer on a specific task.

**2. Neuromorphic Computing:**
Neuromorphic computing imitates the structure and function of the human brain to achieve higher energy efficiency and parallelism. Its core components are neurons and synapses that emulate biological neural networks directly in hardware. IBM's TrueNorth chip was an early example, and Intel's Loihi series pushed the field further with event-driven sparse processing. The architecture suits artificial intelligence and edge workloads.

**3. Photonic Computing:**
Photonic computing transmits and processes information with photons instead of electrons. Photons are fast, consume little energy and are immune to electromagnetic interference, which makes photonic computing promising for high-speed data transfer, analog computation and linear algebra. Silicon photonics, which integrates optical components on silicon chips, is the key enabling technology.

**4. Brain-inspired Computing:**
Brain-inspired computing is a broader concept that borrows learning and cognitive mechanisms from the brain at the algorithm and software level, not only in hardware. It overlaps with neuromorphic computing but emphasizes algorithmic innovation such as spiking neural networks (SNNs) and cognitive computing models.

**5. Edge and Fog Computing:**
With the spread of IoT devices, moving processing close to the data source has become essential. Edge computing reduces transmission latency and bandwidth needs while improving responsiveness and security. Fog computing extends edge computing with an intermediate layer between the cloud and edge devices that offers compute, storage and networking services.

**6. Reversible Computing:**
Reversible computing is a paradigm in which every computational step is logically reversible, so no information is lost. In theory it can run without dissipating heat, which matters for ultra-low-power computing. Landauer's principle states that erasing one bit dissipates at least kT ln 2 of energy; reversible computing aims to sidestep that limit.

**7. Quantum AI:**
Quantum AI sits at the intersection of quantum computing and artificial intelligence. It applies quantum algorithms to accelerate machine learning tasks such as quantum machine learning and quantum optimization, or to simulate complex neural networks. Typical examples are the quantum support vector machine (QSVM) and the quantum neural network (QNN).

**General concepts:**
* **Retrieval-augmented generation**: answering a question with a language model after retrieving relevant passages from a knowledge store.
* **Embedding index**: a persisted collection of text chunks and their vectors, queried by cosine distance.
`

// WriteSample writes the built-in sample knowledge base to path, creating
// parent directories as needed. An existing file is overwritten.
func WriteSample(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleKnowledgeBase), 0o644); err != nil {
		return fmt.Errorf("writing sample corpus %s: %w", path, err)
	}
	return nil
}
